package costs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

func TestLookup_ReturnsStoredVectorForEveryEntry(t *testing.T) {
	for d, levels := range table {
		if d.Military() {
			continue
		}
		for level, want := range levels {
			got, err := Lookup(Request{Type: d, Level: level, Area: 3, Count: 1})
			require.NoError(t, err, "%s level %d", d, level)
			assert.Equal(t, want, got)
		}
	}
}

func TestLookup_DoesNotExposeTable(t *testing.T) {
	got, err := Lookup(Request{Type: Economy, Level: 2, Count: 1})
	require.NoError(t, err)
	got[models.Wood] = 999

	again, err := Lookup(Request{Type: Economy, Level: 2, Count: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(60), again[models.Wood])
}

func TestLookup_MilitaryScalesByCount(t *testing.T) {
	for _, d := range Developments {
		if !d.Military() {
			continue
		}
		base := table[d][1]
		for _, n := range []int{1, 2, 7, 40} {
			got, err := Lookup(Request{Type: d, Level: 1, Area: UnboundArea, Count: n})
			require.NoError(t, err)
			for r, q := range base {
				assert.Equal(t, q*int64(n), got[r], "%s x%d %s", d, n, r)
			}
		}
	}
}

func TestLookup_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "unknown type", req: Request{Type: "Kathedrale", Level: 1, Count: 1}, want: ErrUnknownDevelopment},
		{name: "unit zero count", req: Request{Type: Infantry, Level: 1, Count: 0}, want: ErrInvalidUnitCount},
		{name: "unit negative count", req: Request{Type: Frigate, Level: 1, Count: -3}, want: ErrInvalidUnitCount},
		{name: "unit bound to area", req: Request{Type: Cavalry, Level: 1, Area: 2, Count: 5}, want: ErrAreaNotUnbound},
		{name: "infrastructure count two", req: Request{Type: Mining, Level: 3, Area: 1, Count: 2}, want: ErrInfrastructureCount},
		{name: "infrastructure count zero", req: Request{Type: Fortress, Level: 1, Area: 1, Count: 0}, want: ErrInfrastructureCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lookup(tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLookup_LevelUnavailable(t *testing.T) {
	_, err := Lookup(Request{Type: Suburb, Level: 4, Area: 1, Count: 1})

	var lu *LevelUnavailableError
	require.ErrorAs(t, err, &lu)
	assert.Equal(t, 2, lu.Min)
	assert.Equal(t, 3, lu.Max)

	_, err = Lookup(Request{Type: Infantry, Level: 2, Count: 1})
	require.ErrorAs(t, err, &lu)
	assert.Equal(t, 1, lu.Min)
	assert.Equal(t, 1, lu.Max)
}

func TestLevels(t *testing.T) {
	min, max, ok := Levels(Fortress)
	require.True(t, ok)
	assert.Equal(t, 1, min)
	assert.Equal(t, 5, max)

	_, _, ok = Levels("Kathedrale")
	assert.False(t, ok)
}

func TestParseDevelopment(t *testing.T) {
	d, err := ParseDevelopment("bevölkerung")
	require.NoError(t, err)
	assert.Equal(t, Population, d)

	_, err = ParseDevelopment("Burg")
	assert.ErrorIs(t, err, ErrUnknownDevelopment)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "1.000", FormatAmount(1000))
	assert.Equal(t, "1.500.000", FormatAmount(1_500_000))
	assert.Equal(t, "-12.500", FormatAmount(-12_500))
}
