// Package treaties declares the collection of accepted, still running
// treaties and implements it in memory and over database/sql.
package treaties

import (
	"context"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

// Repository stores active treaties until the expiry sweep removes them.
type Repository interface {
	// Save inserts or replaces the treaty with t.ID.
	Save(ctx context.Context, t models.ActiveTreaty) error

	// Get returns the treaty or common.ErrorNotFound.
	Get(ctx context.Context, id string) (models.ActiveTreaty, error)

	// Delete removes the given treaties. Absent ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// ListActive returns treaties involving the filtered party, ordered by expiry.
	ListActive(ctx context.Context, filter models.PartyFilter) ([]models.ActiveTreaty, error)

	// ListExpired returns treaties with ExpiresAt <= now.
	ListExpired(ctx context.Context, now time.Time) ([]models.ActiveTreaty, error)

	// CountActive counts the party's treaties of the given kind.
	CountActive(ctx context.Context, partyID string, kind models.TreatyKind) (int, error)
}
