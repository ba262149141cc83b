package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/treaties"
)

type fakeMessenger struct {
	mu     sync.Mutex
	sent   map[string][]string
	refuse map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{sent: map[string][]string{}, refuse: map[string]bool{}}
}

func (m *fakeMessenger) SendDirect(ctx context.Context, userID string, msg chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refuse[userID] {
		return common.ErrorDeliveryRefused
	}
	m.sent[userID] = append(m.sent[userID], msg.Content)
	return nil
}

func (m *fakeMessenger) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	return nil
}

func (m *fakeMessenger) count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent[userID])
}

func active(id, a, b string, expires time.Time) models.ActiveTreaty {
	return models.ActiveTreaty{
		ID:           id,
		Type:         models.NonAggression,
		Initiator:    models.Party{ID: a, Nation: "Aquitanien"},
		Counterparty: models.Party{ID: b, Nation: "Burgund"},
		ExpiresAt:    expires,
	}
}

func TestSweepOnce_RemovesOnlyExpired(t *testing.T) {
	repo := treaties.NewMemoryRepository()
	m := newFakeMessenger()
	s := NewSweeper(repo, m, time.Hour, logging.Nop())
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, active("past", "A", "B", now.Add(-time.Minute))))
	require.NoError(t, repo.Save(ctx, active("future", "C", "D", now.Add(time.Minute))))

	n, err := s.SweepOnce(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 1, m.count("A"))
	assert.Equal(t, 1, m.count("B"))
	assert.Equal(t, 0, m.count("C"))
	assert.Equal(t, 0, m.count("D"))
	assert.Contains(t, m.sent["A"][0], "Nichtangriffspakt ausgelaufen")
	assert.Contains(t, m.sent["B"][0], "Herrscher von Burgund")

	_, err = repo.Get(ctx, "past")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.Get(ctx, "future")
	assert.NoError(t, err)
}

func TestSweepOnce_NotificationFailureStillRemoves(t *testing.T) {
	repo := treaties.NewMemoryRepository()
	m := newFakeMessenger()
	m.refuse["A"] = true
	s := NewSweeper(repo, m, time.Hour, logging.Nop())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, active("t", "A", "B", now.Add(-time.Hour))))

	n, err := s.SweepOnce(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, m.count("B"))

	left, _ := repo.ListActive(ctx, models.PartyFilter{})
	assert.Empty(t, left)
}

type failingRepo struct {
	treaties.Repository
}

func (failingRepo) ListExpired(ctx context.Context, now time.Time) ([]models.ActiveTreaty, error) {
	return nil, errors.New("db down")
}

func TestSweepOnce_RepositoryError(t *testing.T) {
	s := NewSweeper(failingRepo{}, newFakeMessenger(), time.Hour, logging.Nop())
	_, err := s.SweepOnce(context.Background(), time.Now())
	assert.EqualError(t, err, "db down")
}

func TestStartStop(t *testing.T) {
	repo := treaties.NewMemoryRepository()
	m := newFakeMessenger()
	s := NewSweeper(repo, m, 10*time.Millisecond, logging.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, active("t", "A", "B", time.Now().Add(-time.Second))))

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return m.count("A") == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	assert.Equal(t, 1, m.count("A"), "a removed treaty is not notified twice")
}

func TestStart_StopsWithContext(t *testing.T) {
	s := NewSweeper(treaties.NewMemoryRepository(), newFakeMessenger(), time.Hour, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on context cancel")
	}
}
