package treaties

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.ActiveTreaty
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.ActiveTreaty)}
}

func (r *MemoryRepository) Save(ctx context.Context, t models.ActiveTreaty) error {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (models.ActiveTreaty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return models.ActiveTreaty{}, common.ErrorNotFound
	}
	return t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	for _, id := range ids {
		delete(r.items, id)
	}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) collect(keep func(models.ActiveTreaty) bool) []models.ActiveTreaty {
	r.mu.RLock()
	out := make([]models.ActiveTreaty, 0)
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

func (r *MemoryRepository) ListActive(ctx context.Context, filter models.PartyFilter) ([]models.ActiveTreaty, error) {
	return r.collect(func(t models.ActiveTreaty) bool {
		return filter.Match(t.Initiator.ID, t.Counterparty.ID)
	}), nil
}

func (r *MemoryRepository) ListExpired(ctx context.Context, now time.Time) ([]models.ActiveTreaty, error) {
	return r.collect(func(t models.ActiveTreaty) bool { return t.Expired(now) }), nil
}

func (r *MemoryRepository) CountActive(ctx context.Context, partyID string, kind models.TreatyKind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.items {
		if t.Type == kind && t.Involves(partyID) {
			n++
		}
	}
	return n, nil
}
