package world

import (
	"time"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// CharacterKind distinguishes the three actor populations sharing the world.
type CharacterKind string

const (
	CharacterKindHuman           CharacterKind = "human"
	CharacterKindNPC             CharacterKind = "npc"
	CharacterKindCorporationShip CharacterKind = "corporation_ship"
)

// ParseCharacterKind validates a wire-level character kind.
func ParseCharacterKind(s string) (CharacterKind, error) {
	switch CharacterKind(s) {
	case CharacterKindHuman, CharacterKindNPC, CharacterKindCorporationShip:
		return CharacterKind(s), nil
	}
	return "", shared.NewValidationError("kind", "unknown character kind "+s)
}

// Character is the authoritative record for one actor. Credits on hand and
// in bank are guarded by the character's credit lock; bank credits are only
// touched in the configured banking sector.
type Character struct {
	ID            string
	Name          string
	Kind          CharacterKind
	SectorID      int
	InHyperspace  bool
	LastActive    time.Time
	CorporationID string
	CreditsOnHand int
	CreditsInBank int
	ShipID        string
}

// CanAfford reports whether the character holds at least amount on hand.
func (c *Character) CanAfford(amount int) bool {
	return c.CreditsOnHand >= amount
}

// Debit removes amount from credits on hand. Callers hold the credit lock
// and have verified affordability; a negative result is an invariant
// violation, so Debit clamps and reports it.
func (c *Character) Debit(amount int) error {
	if amount < 0 {
		return shared.NewTypeError("amount", "must be non-negative")
	}
	if c.CreditsOnHand < amount {
		return shared.NewInsufficientCreditsError(amount, c.CreditsOnHand)
	}
	c.CreditsOnHand -= amount
	return nil
}

// Credit adds amount to credits on hand.
func (c *Character) Credit(amount int) error {
	if amount < 0 {
		return shared.NewTypeError("amount", "must be non-negative")
	}
	c.CreditsOnHand += amount
	return nil
}

// Touch refreshes the activity timestamp.
func (c *Character) Touch(now time.Time) {
	c.LastActive = now
}
