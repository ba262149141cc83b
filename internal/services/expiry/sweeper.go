// Package expiry removes treaties whose term has run out and tells both
// rulers about it.
package expiry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/chat"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/treaties"
)

// Sweeper is started by the lifecycle manager once the chat session is
// ready and stopped on shutdown. It never starts itself.
type Sweeper struct {
	repo      treaties.Repository
	messenger chat.Messenger
	interval  time.Duration
	logger    logging.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(repo treaties.Repository, messenger chat.Messenger, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		repo:      repo,
		messenger: messenger,
		interval:  interval,
		logger:    logger.With("module", "expiry"),
		now:       time.Now,
	}
}

var ErrAlreadyRunning = errors.New("sweeper already running")

// Start runs a pass immediately and then every interval until ctx is
// cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	s.logger.Info(ctx, "expiry sweeper started", "interval", s.interval.String())
	return nil
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx, s.now()); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, "expiry sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the loop and waits for the running pass to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SweepOnce notifies the parties of every treaty expired at now and
// removes those treaties. Notification failures are logged and do not
// keep a treaty alive.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(expired))
	for _, t := range expired {
		s.notify(ctx, t.Initiator, t.Counterparty, t.Type)
		s.notify(ctx, t.Counterparty, t.Initiator, t.Type)
		ids = append(ids, t.ID)
	}

	if err := s.repo.Delete(ctx, ids...); err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "expired treaties removed", "count", len(ids))
	return len(ids), nil
}

func (s *Sweeper) notify(ctx context.Context, to, other models.Party, kind models.TreatyKind) {
	msg := chat.Text(kind.ExpiredMessage(to.Nation, other.Nation))
	if err := s.messenger.SendDirect(ctx, to.ID, msg); err != nil {
		s.logger.Warn(ctx, "expiry notification failed", "user", to.ID, "error", err)
	}
}
