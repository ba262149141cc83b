package treaties

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

func treaty(id, a, b string, kind models.TreatyKind, expires time.Time) models.ActiveTreaty {
	return models.ActiveTreaty{
		ID:           id,
		Type:         kind,
		Initiator:    models.Party{ID: a, Nation: "Land " + a},
		Counterparty: models.Party{ID: b, Nation: "Land " + b},
		DurationDays: 7,
		SignedAt:     expires.AddDate(0, 0, -7),
		ExpiresAt:    expires,
	}
}

func TestMemoryRepository_SaveGetDelete(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Save(ctx, treaty("t1", "A", "B", models.Alliance, now)))

	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.Alliance, got.Type)

	require.NoError(t, r.Delete(ctx, "t1", "unknown"))
	require.NoError(t, r.Delete(ctx, "t1"))

	_, err = r.Get(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ListExpired(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_ = r.Save(ctx, treaty("past", "A", "B", models.NonAggression, now.Add(-time.Hour)))
	_ = r.Save(ctx, treaty("exact", "A", "C", models.NonAggression, now))
	_ = r.Save(ctx, treaty("future", "A", "D", models.NonAggression, now.Add(time.Hour)))

	expired, err := r.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "past", expired[0].ID)
	assert.Equal(t, "exact", expired[1].ID)
}

func TestMemoryRepository_ListActiveAndCount(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	_ = r.Save(ctx, treaty("1", "A", "B", models.Protection, now.Add(2*time.Hour)))
	_ = r.Save(ctx, treaty("2", "C", "A", models.Protection, now.Add(time.Hour)))
	_ = r.Save(ctx, treaty("3", "C", "D", models.Marriage, now))

	forA, err := r.ListActive(ctx, models.PartyFilter{PartyID: "A"})
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, "2", forA[0].ID)

	n, err := r.CountActive(ctx, "A", models.Protection)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, _ = r.CountActive(ctx, "A", models.Marriage)
	assert.Equal(t, 0, n)
}
