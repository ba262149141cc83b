package development

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/costs"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/sheets"
)

type fakeLedger struct {
	entries []sheets.DevelopmentEntry
	err     error
}

func (f *fakeLedger) LogDevelopment(ctx context.Context, e sheets.DevelopmentEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

type fakeMessenger struct {
	channels map[string][]chat.Message
}

func (m *fakeMessenger) SendDirect(ctx context.Context, userID string, msg chat.Message) error {
	return nil
}

func (m *fakeMessenger) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	if m.channels == nil {
		m.channels = map[string][]chat.Message{}
	}
	m.channels[channelID] = append(m.channels[channelID], msg)
	return nil
}

var player = models.Party{ID: "A", Nation: "Aquitanien"}

func newService(ledger Ledger, m chat.Messenger) *Service {
	s := NewService(ledger, m, "ausbau", logging.Nop())
	s.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestPerform_Infrastructure(t *testing.T) {
	ledger := &fakeLedger{}
	m := &fakeMessenger{}
	s := newService(ledger, m)

	res, err := s.Perform(context.Background(), Order{Party: player, Type: "wirtschaft", Level: 2, Area: 4, Count: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(1_500_000), res.Cost[models.Ducats])
	assert.Empty(t, res.Warning)

	require.Len(t, ledger.entries, 1)
	assert.Equal(t, costs.Economy, ledger.entries[0].Development)
	assert.Equal(t, 4, ledger.entries[0].Area)

	require.Len(t, m.channels["ausbau"], 1)
	embed := m.channels["ausbau"][0].Embed
	require.NotNil(t, embed)
	assert.Equal(t, "Ausbau durchgeführt", embed.Title)
	last := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "Kosten", last.Name)
	assert.Equal(t, "- Holz: 60\n- Stein: 60\n- Eisen: 10\n- Dukaten: 1.500.000", last.Value)
}

func TestPerform_MilitaryScalesByCount(t *testing.T) {
	ledger := &fakeLedger{}
	s := newService(ledger, &fakeMessenger{})

	res, err := s.Perform(context.Background(), Order{Party: player, Type: "Infanterie", Level: 1, Area: costs.UnboundArea, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(750_000), res.Cost[models.Ducats])
	assert.Equal(t, int64(60), res.Cost[models.Iron])

	var names []string
	for _, f := range res.Embed.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Anzahl")
}

func TestPerform_ValidationMessages(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  string
	}{
		{"no nation", Order{Party: models.Party{ID: "A"}, Type: "Wirtschaft", Level: 2, Count: 1}, "Du brauchst ein Land"},
		{"unknown type", Order{Party: player, Type: "Tempel", Level: 1, Count: 1}, "Unbekannte Ausbauart: Tempel"},
		{"level", Order{Party: player, Type: "Festung", Level: 9, Count: 1}, "Für Festung sind Stufen von 1 bis 5 verfügbar."},
		{"area", Order{Party: player, Type: "Kavallerie", Level: 1, Area: 3, Count: 1}, "Gebiet 0"},
		{"unit count", Order{Party: player, Type: "Kavallerie", Level: 1, Count: 0}, "mindestens 1"},
		{"infra count", Order{Party: player, Type: "Bergbau", Level: 2, Count: 2}, "nur einzeln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			m := &fakeMessenger{}
			_, err := newService(ledger, m).Perform(context.Background(), tt.order)
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.Contains(t, common.UserMessage(err, ""), tt.want)
			assert.Empty(t, ledger.entries)
			assert.Empty(t, m.channels)
		})
	}
}

func TestPerform_LedgerFailureIsSoft(t *testing.T) {
	m := &fakeMessenger{}
	s := newService(&fakeLedger{err: errors.New("quota")}, m)

	res, err := s.Perform(context.Background(), Order{Party: player, Type: "Wirtschaft", Level: 3, Count: 1})
	require.NoError(t, err)
	assert.Equal(t, ledgerWarning, res.Warning)
	assert.Len(t, m.channels["ausbau"], 1)
}

func TestPerform_DisabledLedgerIsSilent(t *testing.T) {
	s := newService(sheets.Disabled{}, &fakeMessenger{})

	res, err := s.Perform(context.Background(), Order{Party: player, Type: "Wirtschaft", Level: 3, Count: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
}

func TestPerform_FallsBackToOrderChannel(t *testing.T) {
	m := &fakeMessenger{}
	s := NewService(&fakeLedger{}, m, "", logging.Nop())

	_, err := s.Perform(context.Background(), Order{Party: player, Type: "Festung", Level: 1, Count: 1, ChannelID: "rp"})
	require.NoError(t, err)
	assert.Len(t, m.channels["rp"], 1)
}

func TestCostLines_Empty(t *testing.T) {
	assert.Equal(t, "Keine Ressourcen", CostLines(costs.Vector{}))
}
