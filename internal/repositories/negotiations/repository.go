// Package negotiations declares the store of pending trade and treaty
// proposals and provides its in-memory implementation.
package negotiations

import (
	"context"

	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

// Store holds negotiations between proposal and resolution.
type Store interface {
	// Create stores n and returns its id, generating one when n.ID is empty.
	// Returns common.ErrorAlreadyExists when the id is taken.
	Create(ctx context.Context, n *models.Negotiation) (string, error)

	// Get returns a copy of the record or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Negotiation, error)

	// SetAcceptance records one party's answer.
	SetAcceptance(ctx context.Context, id string, role models.Role, accepted bool) error

	// Remove deletes the record. Removing an absent id is not an error.
	Remove(ctx context.Context, id string) error

	// ListActive returns pending records matching the filter, oldest first.
	ListActive(ctx context.Context, filter models.PartyFilter) ([]*models.Negotiation, error)
}
