// Package sheets writes finalized trades, treaties and developments to the
// game's Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/costs"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

const (
	tradeRange       = "Handelsbuch!A:I"
	ledgerRange      = "Handelsbuch!A:L"
	treatyRange      = "Verträge!A:F"
	developmentRange = "Ausbau!A:K"

	inputUserEntered = "USER_ENTERED"
	inputRaw         = "RAW"

	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "02.01.2006"
)

// ledgerColumns is the resource column order of the Handelsbuch.
var ledgerColumns = []models.Resource{models.Stone, models.Iron, models.Wood, models.Food, models.Cloth, models.Ducats}

// DevelopmentEntry is one performed ausbau.
type DevelopmentEntry struct {
	Nation      string
	Development costs.Development
	Level       int
	Area        int
	Count       int
	Cost        costs.Vector
	At          time.Time
}

// appender appends rows below the table found in rng.
type appender interface {
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}, inputOption string) error
}

type serviceAppender struct {
	srv *gsheets.Service
}

func (a serviceAppender) Append(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}, inputOption string) error {
	_, err := a.srv.Spreadsheets.Values.
		Append(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption(inputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

var newSheetsService = func(ctx context.Context, opts ...option.ClientOption) (*gsheets.Service, error) {
	return gsheets.NewService(ctx, opts...)
}

type Config struct {
	SpreadsheetID string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// Enabled reports whether a spreadsheet and credentials are configured.
func (c Config) Enabled() bool {
	return c.SpreadsheetID != "" && (c.CredentialsJSON != "" || c.CredentialsFile != "")
}

type Sink struct {
	spreadsheetID string
	app           appender
	logger        logging.Logger
}

// New builds a Sink authenticated with a service account.
func New(ctx context.Context, cfg Config, logger logging.Logger) (*Sink, error) {
	if !cfg.Enabled() {
		return nil, common.ErrorSinkDisabled
	}

	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	srv, err := newSheetsService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets client: %w", err)
	}
	return newSink(cfg.SpreadsheetID, serviceAppender{srv: srv}, logger), nil
}

func newSink(spreadsheetID string, app appender, logger logging.Logger) *Sink {
	return &Sink{spreadsheetID: spreadsheetID, app: app, logger: logger.With("module", "sheets")}
}

func (s *Sink) append(ctx context.Context, rng, input string, rows ...[]interface{}) error {
	if err := s.app.Append(ctx, s.spreadsheetID, rng, rows, input); err != nil {
		s.logger.Error(ctx, "sheet append failed", "range", rng, "error", err)
		return fmt.Errorf("error appending to %s: %w", rng, err)
	}
	return nil
}

func ledgerRow(at time.Time, exporter, importer string, amounts map[models.Resource]int64) []interface{} {
	row := []interface{}{at.Format(timestampLayout), exporter, importer}
	for _, r := range ledgerColumns {
		row = append(row, amounts[r])
	}
	return row
}

// LogTrade writes one Handelsbuch row per direction of the exchange.
func (s *Sink) LogTrade(ctx context.Context, n *models.Negotiation, signedAt time.Time) error {
	if n.Trade == nil {
		return common.NewValidationError("negotiation has no trade terms")
	}
	a, b := n.Initiator.Nation, n.Counterparty.Nation
	out := ledgerRow(signedAt, a, b, map[models.Resource]int64{n.Trade.Offer.Resource: n.Trade.Offer.Amount})
	in := ledgerRow(signedAt, b, a, map[models.Resource]int64{n.Trade.Request.Resource: n.Trade.Request.Amount})

	if err := s.append(ctx, tradeRange, inputRaw, out); err != nil {
		return err
	}
	if err := s.append(ctx, tradeRange, inputRaw, in); err != nil {
		return err
	}
	s.logger.Info(ctx, "trade logged", "initiator", a, "counterparty", b)
	return nil
}

// LogTreaty writes the treaty to the Verträge sheet.
func (s *Sink) LogTreaty(ctx context.Context, n *models.Negotiation, signedAt time.Time) error {
	if n.Treaty == nil {
		return common.NewValidationError("negotiation has no treaty terms")
	}
	row := []interface{}{
		signedAt.Format(dateLayout),
		n.Treaty.Type.String(),
		n.Initiator.Nation,
		n.Counterparty.Nation,
		n.Treaty.DurationDays,
		n.Treaty.ExpiresAt.Format(dateLayout),
	}
	return s.append(ctx, treatyRange, inputUserEntered, row)
}

func developmentLabel(e DevelopmentEntry) string {
	if e.Development.Military() {
		return fmt.Sprintf("%s (x%d)", e.Development, e.Count)
	}
	return string(e.Development)
}

// LogDevelopment writes the Ausbau row and then the matching Handelsbuch
// entry with "Ausbau" as importer.
func (s *Sink) LogDevelopment(ctx context.Context, e DevelopmentEntry) error {
	level := fmt.Sprintf("Stufe %d", e.Level)
	row := []interface{}{
		e.At.Format(dateLayout),
		e.Nation,
		developmentLabel(e),
		level,
		e.Area,
		e.Cost[models.Wood],
		e.Cost[models.Stone],
		e.Cost[models.Iron],
		e.Cost[models.Cloth],
		e.Cost[models.Food],
		e.Cost[models.Ducats],
	}
	if err := s.append(ctx, developmentRange, inputUserEntered, row); err != nil {
		return err
	}

	ledger := append(ledgerRow(e.At, e.Nation, "Ausbau", e.Cost), string(e.Development), level, fmt.Sprint(e.Area))
	return s.append(ctx, ledgerRange, inputRaw, ledger)
}

// Disabled is used when no spreadsheet is configured.
type Disabled struct{}

func (Disabled) LogTrade(context.Context, *models.Negotiation, time.Time) error {
	return common.ErrorSinkDisabled
}

func (Disabled) LogTreaty(context.Context, *models.Negotiation, time.Time) error {
	return common.ErrorSinkDisabled
}

func (Disabled) LogDevelopment(context.Context, DevelopmentEntry) error {
	return common.ErrorSinkDisabled
}
