package negotiations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

// MemoryStore is a mutex-guarded map of pending negotiations.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.Negotiation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*models.Negotiation)}
}

func (s *MemoryStore) Create(ctx context.Context, n *models.Negotiation) (string, error) {
	c := n.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[c.ID]; ok {
		return "", common.ErrorAlreadyExists
	}
	s.items[c.ID] = c
	return c.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return n.Clone(), nil
}

func (s *MemoryStore) SetAcceptance(ctx context.Context, id string, role models.Role, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	if role == models.RoleInitiator {
		n.Acceptance.Initiator = accepted
	} else {
		n.Acceptance.Counterparty = accepted
	}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListActive(ctx context.Context, filter models.PartyFilter) ([]*models.Negotiation, error) {
	s.mu.RLock()
	out := make([]*models.Negotiation, 0, len(s.items))
	for _, n := range s.items {
		if filter.Match(n.Initiator.ID, n.Counterparty.ID) {
			out = append(out, n.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
