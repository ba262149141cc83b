// Package seal issues and verifies signed tokens that attest a ratified
// document. A token is printed under each announcement; anyone can check
// it against the bot's /seal endpoint.
package seal

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

const issuer = "kurator"

type Claims struct {
	jwt.RegisteredClaims
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Initiator    string `json:"initiator"`
	Counterparty string `json:"counterparty"`
	Terms        string `json:"terms"`
}

type Issuer struct {
	secret []byte
	// ttl of zero issues tokens that never expire.
	ttl time.Duration
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, common.ErrorSealDisabled
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

func terms(n *models.Negotiation) string {
	switch {
	case n.Trade != nil:
		return fmt.Sprintf("%s gegen %s", n.Trade.Offer, n.Trade.Request)
	case n.Treaty != nil:
		return fmt.Sprintf("%d Tage bis %s", n.Treaty.DurationDays, n.Treaty.ExpiresAt.Format("02.01.2006"))
	}
	return ""
}

// Issue signs the identity and terms of n.
func (i *Issuer) Issue(n *models.Negotiation, signedAt time.Time) (string, error) {
	rc := jwt.RegisteredClaims{
		ID:       n.ID,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(signedAt),
	}
	if i.ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(signedAt.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: rc,
		Kind:             n.Kind.String(),
		Title:            n.Title(),
		Initiator:        n.Initiator.Nation,
		Counterparty:     n.Counterparty.Nation,
		Terms:            terms(n),
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return s, nil
}

// Verify returns the claims of a token issued with the same secret.
// Every failure matches common.ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: seal expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
