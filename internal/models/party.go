// Package models contains the domain types shared by the negotiation
// protocol, the stores and the chat adapter.
package models

import "fmt"

// Party is one side of a negotiation: a chat user acting for a nation.
type Party struct {
	ID          string
	DisplayName string
	Nation      string
}

// Mention renders the chat mention markup for the party.
func (p Party) Mention() string {
	return fmt.Sprintf("<@%s>", p.ID)
}

// Role identifies which side of a negotiation a party plays.
type Role int

const (
	RoleInitiator Role = iota
	RoleCounterparty
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "counterparty"
}
