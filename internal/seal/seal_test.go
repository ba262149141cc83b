package seal

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

func treaty() *models.Negotiation {
	signed := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return &models.Negotiation{
		ID:           "n-42",
		Kind:         models.KindTreaty,
		Initiator:    models.Party{Nation: "Aquitanien"},
		Counterparty: models.Party{Nation: "Burgund"},
		Treaty:       &models.TreatyTerms{Type: models.Marriage, DurationDays: 7, ExpiresAt: signed.AddDate(0, 0, 7)},
	}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	iss, err := NewIssuer("siegel", 0)
	require.NoError(t, err)

	tok, err := iss.Issue(treaty(), time.Now())
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "n-42", claims.ID)
	assert.Equal(t, "Hochzeitspakt", claims.Title)
	assert.Equal(t, "Aquitanien", claims.Initiator)
	assert.Equal(t, "Burgund", claims.Counterparty)
	assert.Equal(t, "7 Tage bis 21.03.2026", claims.Terms)
	assert.Nil(t, claims.ExpiresAt)
}

func TestVerify_TradeTerms(t *testing.T) {
	t.Parallel()

	iss, _ := NewIssuer("siegel", time.Hour)
	n := &models.Negotiation{
		ID:   "n-1",
		Kind: models.KindTrade,
		Trade: &models.TradeTerms{
			Offer:   models.Goods{Resource: models.Iron, Amount: 50},
			Request: models.Goods{Resource: models.Wood, Amount: 100},
		},
	}
	tok, err := iss.Issue(n, time.Now())
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "50 Eisen gegen 100 Holz", claims.Terms)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()

	iss, _ := NewIssuer("right", time.Hour)
	other, _ := NewIssuer("wrong", time.Hour)
	expiring, _ := NewIssuer("right", time.Second)

	forged, err := other.Issue(treaty(), time.Now())
	require.NoError(t, err)
	expired, err := expiring.Issue(treaty(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": forged,
		"expired":      expired,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
	} {
		_, err := iss.Verify(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, name)
	}
}

func TestNewIssuer_Disabled(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("", 0)
	assert.ErrorIs(t, err, common.ErrorSealDisabled)
}
