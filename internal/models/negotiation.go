package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBreachClause is used when a proposal leaves the breach clause empty.
const DefaultBreachClause = "Der Schuldige muss das Doppelte des Wertes oder eine gleichwertige " +
	"Entschädigung zahlen. Ein Vertragsbruchkrieg (§2.1.1) kann erklärt werden. " +
	"Vertragsbrüche werden von der Spielleitung geprüft. Sanktionen können wirtschaftlicher, " +
	"militärischer oder territorialer Natur sein."

// Kind tells a trade negotiation apart from a treaty negotiation.
type Kind int

const (
	KindTrade Kind = iota + 1
	KindTreaty
)

func (k Kind) String() string {
	switch k {
	case KindTrade:
		return "trade"
	case KindTreaty:
		return "treaty"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Goods is a quantity of one resource.
type Goods struct {
	Resource Resource
	Amount   int64
}

func (g Goods) String() string {
	return fmt.Sprintf("%d %s", g.Amount, g.Resource)
}

// TradeTerms is the payload of a trade negotiation: the initiator delivers
// Offer and receives Request.
type TradeTerms struct {
	Offer   Goods
	Request Goods
}

// TreatyTerms is the payload of a treaty negotiation.
type TreatyTerms struct {
	Type         TreatyKind
	DurationDays int
	ExpiresAt    time.Time
}

// Acceptance holds each party's answer. Both start false.
type Acceptance struct {
	Initiator    bool
	Counterparty bool
}

// Both reports whether both parties accepted.
func (a Acceptance) Both() bool { return a.Initiator && a.Counterparty }

// Negotiation is one pending trade or treaty proposal.
type Negotiation struct {
	ID              string
	Kind            Kind
	Initiator       Party
	Counterparty    Party
	Trade           *TradeTerms
	Treaty          *TreatyTerms
	BreachClause    string
	Notes           string
	Acceptance      Acceptance
	CreatedAt       time.Time
	OriginChannelID string
}

// Party returns the party playing role r.
func (n *Negotiation) Party(r Role) Party {
	if r == RoleInitiator {
		return n.Initiator
	}
	return n.Counterparty
}

// Title is the heading used in messages and on the rendered document.
func (n *Negotiation) Title() string {
	if n.Kind == KindTreaty && n.Treaty != nil {
		return n.Treaty.Type.String()
	}
	return "Handelsvertrag"
}

// Clause returns the breach clause, falling back to DefaultBreachClause.
func (n *Negotiation) Clause() string {
	if strings.TrimSpace(n.BreachClause) == "" {
		return DefaultBreachClause
	}
	return n.BreachClause
}

// Clone returns a deep copy so stored records are never shared.
func (n *Negotiation) Clone() *Negotiation {
	if n == nil {
		return nil
	}
	c := *n
	if n.Trade != nil {
		t := *n.Trade
		c.Trade = &t
	}
	if n.Treaty != nil {
		t := *n.Treaty
		c.Treaty = &t
	}
	return &c
}

// Involves reports whether partyID is one of the two sides.
func (n *Negotiation) Involves(partyID string) bool {
	return n.Initiator.ID == partyID || n.Counterparty.ID == partyID
}

// ActiveTreaty is an accepted treaty kept until it expires.
type ActiveTreaty struct {
	ID           string
	Type         TreatyKind
	Initiator    Party
	Counterparty Party
	BreachClause string
	Notes        string
	DurationDays int
	SignedAt     time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the treaty has run out at now.
func (t ActiveTreaty) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Involves reports whether partyID is one of the two sides.
func (t ActiveTreaty) Involves(partyID string) bool {
	return t.Initiator.ID == partyID || t.Counterparty.ID == partyID
}

// Other returns the side opposite to partyID.
func (t ActiveTreaty) Other(partyID string) Party {
	if t.Initiator.ID == partyID {
		return t.Counterparty
	}
	return t.Initiator
}

// ActiveTreatyFrom promotes an accepted treaty negotiation.
func ActiveTreatyFrom(n *Negotiation, signedAt time.Time) ActiveTreaty {
	t := ActiveTreaty{
		ID:           n.ID,
		Initiator:    n.Initiator,
		Counterparty: n.Counterparty,
		BreachClause: n.Clause(),
		Notes:        n.Notes,
		SignedAt:     signedAt,
	}
	if n.Treaty != nil {
		t.Type = n.Treaty.Type
		t.DurationDays = n.Treaty.DurationDays
		t.ExpiresAt = n.Treaty.ExpiresAt
	}
	return t
}

// PartyFilter restricts listings to records involving PartyID. An empty
// filter matches everything.
type PartyFilter struct {
	PartyID string
}

func (f PartyFilter) Match(partyIDs ...string) bool {
	if f.PartyID == "" {
		return true
	}
	for _, id := range partyIDs {
		if id == f.PartyID {
			return true
		}
	}
	return false
}
