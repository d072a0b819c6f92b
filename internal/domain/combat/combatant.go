package combat

import "github.com/andrescamacho/tradewars-server/internal/domain/world"

// CombatantKind discriminates the entities that can take part in an
// encounter.
type CombatantKind string

const (
	CombatantCharacter CombatantKind = "character"
	CombatantGarrison  CombatantKind = "garrison"
	CombatantEscapePod CombatantKind = "escape_pod"
)

// Combatant is one participant's live combat state. Character combatants
// mirror their ship's fighters/shields for the duration of the encounter;
// the application layer writes the final values back on resolution.
type Combatant struct {
	ID               string
	Kind             CombatantKind
	Name             string
	Fighters         int
	Shields          int
	MaxFighters      int
	MaxShields       int
	OwnerCharacterID string

	// Character-only state used by flee resolution.
	WarpPower    int
	WarpCapacity int

	// Garrison-only standing order.
	GarrisonMode world.GarrisonMode

	Defeated bool
	Fled     bool
}

// Live reports whether the combatant still takes part in rounds.
func (c *Combatant) Live() bool {
	return !c.Defeated && !c.Fled
}

// Side returns the allegiance key used by end-state detection: combatants
// sharing an owner fight together, a neutral garrison is its own side.
func (c *Combatant) Side() string {
	if c.OwnerCharacterID != "" {
		return c.OwnerCharacterID
	}
	return c.ID
}

// Targetable reports whether the combatant can be attacked. Escape pods
// are out of the fight and cannot be targets.
func (c *Combatant) Targetable() bool {
	return c.Live() && c.Kind != CombatantEscapePod
}
