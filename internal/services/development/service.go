// Package development performs ausbau orders: it prices them from the cost
// table, books them in the spreadsheet and announces them.
package development

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/costs"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/sheets"
)

type Ledger interface {
	LogDevelopment(ctx context.Context, e sheets.DevelopmentEntry) error
}

type Order struct {
	Party models.Party
	Type  string
	Level int
	Area  int
	Count int
	// ChannelID receives the announcement when no development channel is configured.
	ChannelID string
}

type Result struct {
	Cost  costs.Vector
	Embed chat.Embed
	// Warning is set when the order went through but could not be booked.
	Warning string
}

type Service struct {
	ledger    Ledger
	messenger chat.Messenger
	channelID string
	logger    logging.Logger
	now       func() time.Time
}

// NewService returns a Service announcing to channelID, or to the channel
// of the order when channelID is empty.
func NewService(ledger Ledger, messenger chat.Messenger, channelID string, logger logging.Logger) *Service {
	return &Service{
		ledger:    ledger,
		messenger: messenger,
		channelID: channelID,
		logger:    logger.With("module", "development"),
		now:       time.Now,
	}
}

const ledgerWarning = "Der Ausbau wurde durchgeführt, konnte aber nicht in die Tabelle eingetragen werden."

func (s *Service) Perform(ctx context.Context, o Order) (Result, error) {
	if o.Party.Nation == "" {
		return Result{}, common.NewValidationError("Du brauchst ein Land (Rolle), um einen Ausbau durchzuführen.")
	}

	dev, err := costs.ParseDevelopment(o.Type)
	if err != nil {
		return Result{}, validation(err, o)
	}

	cost, err := costs.Lookup(costs.Request{Type: dev, Level: o.Level, Area: o.Area, Count: o.Count})
	if err != nil {
		return Result{}, validation(err, o)
	}

	entry := sheets.DevelopmentEntry{
		Nation:      o.Party.Nation,
		Development: dev,
		Level:       o.Level,
		Area:        o.Area,
		Count:       o.Count,
		Cost:        cost,
		At:          s.now(),
	}

	res := Result{Cost: cost, Embed: resultEmbed(o.Party, entry)}

	if err := s.ledger.LogDevelopment(ctx, entry); err != nil {
		if !errors.Is(err, common.ErrorSinkDisabled) {
			s.logger.Warn(ctx, "development not booked", "nation", entry.Nation, "error", err)
			res.Warning = ledgerWarning
		}
	}

	target := s.channelID
	if target == "" {
		target = o.ChannelID
	}
	if target != "" {
		embed := res.Embed
		if err := s.messenger.SendChannel(ctx, target, chat.Message{Embed: &embed}); err != nil {
			s.logger.Warn(ctx, "development announcement failed", "channel", target, "error", err)
		}
	}

	s.logger.Info(ctx, "development performed", "nation", entry.Nation, "type", string(dev), "level", o.Level)
	return res, nil
}

func validation(err error, o Order) error {
	var lvl *costs.LevelUnavailableError
	switch {
	case errors.As(err, &lvl):
		return common.NewValidationError(fmt.Sprintf("Für %s sind Stufen von %d bis %d verfügbar.", lvl.Development, lvl.Min, lvl.Max))
	case errors.Is(err, costs.ErrUnknownDevelopment):
		return common.NewValidationError(fmt.Sprintf("Unbekannte Ausbauart: %s", o.Type))
	case errors.Is(err, costs.ErrAreaNotUnbound):
		return common.NewValidationError(fmt.Sprintf("Militärische Einheiten werden im Gebiet %d ausgehoben.", costs.UnboundArea))
	case errors.Is(err, costs.ErrInvalidUnitCount):
		return common.NewValidationError("Die Anzahl der Einheiten muss mindestens 1 sein.")
	case errors.Is(err, costs.ErrInfrastructureCount):
		return common.NewValidationError("Infrastruktur kann nur einzeln ausgebaut werden (Anzahl 1).")
	}
	return err
}

// CostLines renders one "- Holz: 1.500.000" line per non-zero resource.
func CostLines(v costs.Vector) string {
	var lines []string
	for _, r := range models.Resources {
		if q := v[r]; q > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", r, costs.FormatAmount(q)))
		}
	}
	if len(lines) == 0 {
		return "Keine Ressourcen"
	}
	return strings.Join(lines, "\n")
}

func resultEmbed(p models.Party, e sheets.DevelopmentEntry) chat.Embed {
	embed := chat.Embed{
		Title:       "Ausbau durchgeführt",
		Description: fmt.Sprintf("%s hat einen Ausbau in %s durchgeführt.", p.Mention(), e.Nation),
		Color:       chat.ColorGreen,
	}
	embed.AddField("Land", e.Nation, true).
		AddField("Ausbau", fmt.Sprintf("%s (Stufe %d)", e.Development, e.Level), true).
		AddField("Gebiet", fmt.Sprint(e.Area), true)
	if e.Development.Military() {
		embed.AddField("Anzahl", fmt.Sprint(e.Count), true)
	}
	embed.AddField("Kosten", CostLines(e.Cost), false)
	return embed
}
