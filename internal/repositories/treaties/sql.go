package treaties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/dbx"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

// Dialect selects the placeholder style of the backend.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

var dollarParam = regexp.MustCompile(`\$(\d+)`)

// SQLRepository keeps active treaties in the active_treaties table.
// Timestamps are stored as unix seconds.
type SQLRepository struct {
	db      dbx.DBTX
	tx      dbx.TxBeginner
	dialect Dialect
}

// NewSQLRepository binds the repository to db. When db also implements
// dbx.TxBeginner (a *sql.DB does) multi-row deletes run in one transaction.
func NewSQLRepository(db dbx.DBTX, dialect Dialect) *SQLRepository {
	r := &SQLRepository{db: db, dialect: dialect}
	if b, ok := db.(dbx.TxBeginner); ok {
		r.tx = b
	}
	return r
}

// q rewrites $N placeholders to SQLite's ?N form.
func (r *SQLRepository) q(query string) string {
	if r.dialect == SQLite {
		return dollarParam.ReplaceAllString(query, "?$1")
	}
	return query
}

const selectColumns = `id, kind, initiator_id, initiator_name, initiator_nation,
		counterparty_id, counterparty_name, counterparty_nation,
		breach_clause, notes, duration_days, signed_at, expires_at`

// Save stores timestamps as unix seconds; sub-second parts are dropped.
func (r *SQLRepository) Save(ctx context.Context, t models.ActiveTreaty) error {
	query := `INSERT INTO active_treaties (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET expires_at = excluded.expires_at, notes = excluded.notes`

	_, err := r.db.ExecContext(ctx, r.q(query),
		t.ID, int(t.Type),
		t.Initiator.ID, t.Initiator.DisplayName, t.Initiator.Nation,
		t.Counterparty.ID, t.Counterparty.DisplayName, t.Counterparty.Nation,
		t.BreachClause, t.Notes, t.DurationDays, t.SignedAt.Unix(), t.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTreaty(s scanner) (models.ActiveTreaty, error) {
	var (
		t                 models.ActiveTreaty
		kind              int
		signed, expiresAt int64
	)
	err := s.Scan(&t.ID, &kind,
		&t.Initiator.ID, &t.Initiator.DisplayName, &t.Initiator.Nation,
		&t.Counterparty.ID, &t.Counterparty.DisplayName, &t.Counterparty.Nation,
		&t.BreachClause, &t.Notes, &t.DurationDays, &signed, &expiresAt,
	)
	if err != nil {
		return models.ActiveTreaty{}, err
	}
	t.Type = models.TreatyKind(kind)
	t.SignedAt = time.Unix(signed, 0).UTC()
	t.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return t, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (models.ActiveTreaty, error) {
	query := `SELECT ` + selectColumns + ` FROM active_treaties WHERE id = $1`

	t, err := scanTreaty(r.db.QueryRowContext(ctx, r.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ActiveTreaty{}, common.ErrorNotFound
	}
	if err != nil {
		return models.ActiveTreaty{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	del := func(ctx context.Context, db dbx.DBTX) error {
		for _, id := range ids {
			if _, err := db.ExecContext(ctx, r.q(`DELETE FROM active_treaties WHERE id = $1`), id); err != nil {
				return fmt.Errorf("error performing sql request: %w", err)
			}
		}
		return nil
	}

	if len(ids) == 1 || r.tx == nil {
		return del(ctx, r.db)
	}
	return dbx.WithTx(ctx, r.tx, nil, del)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.ActiveTreaty, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	out := make([]models.ActiveTreaty, 0)
	for rows.Next() {
		t, err := scanTreaty(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) ListActive(ctx context.Context, filter models.PartyFilter) ([]models.ActiveTreaty, error) {
	if filter.PartyID == "" {
		return r.list(ctx, `SELECT `+selectColumns+` FROM active_treaties ORDER BY expires_at, id`)
	}
	return r.list(ctx, `SELECT `+selectColumns+` FROM active_treaties
		WHERE initiator_id = $1 OR counterparty_id = $1 ORDER BY expires_at, id`, filter.PartyID)
}

func (r *SQLRepository) ListExpired(ctx context.Context, now time.Time) ([]models.ActiveTreaty, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM active_treaties
		WHERE expires_at <= $1 ORDER BY expires_at, id`, now.Unix())
}

func (r *SQLRepository) CountActive(ctx context.Context, partyID string, kind models.TreatyKind) (int, error) {
	query := `SELECT COUNT(*) FROM active_treaties
		WHERE kind = $1 AND (initiator_id = $2 OR counterparty_id = $2)`

	var n int
	if err := r.db.QueryRowContext(ctx, r.q(query), int(kind), partyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}
