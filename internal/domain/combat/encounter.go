package combat

import (
	"strconv"
	"time"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// State is the encounter lifecycle phase.
type State string

const (
	StateAwaitingRound State = "awaiting_round"
	StateResolving     State = "resolving"
	StateEnded         State = "ended"
)

// Result values for ended encounters.
const (
	ResultTollSatisfied   = "toll_satisfied"
	ResultAdminTerminated = "admin_terminated"
)

// Context records why and how the encounter started.
type Context struct {
	InitiatorID string
	Reason      string
	// CapturedGarrisons are the garrison records pulled out of the sector
	// when they joined the fight. Survivors are reinstated on resolution;
	// the sector map never lists a garrison while it fights.
	CapturedGarrisons []*world.Garrison
}

// Encounter is a single combat session scoped to one sector. All access
// is serialized by the sector's combat lock; the struct itself carries no
// synchronization.
type Encounter struct {
	ID           string
	SectorID     int
	Round        int
	State        State
	Deadline     time.Time
	Participants map[string]*Combatant
	Pending      map[string]Action
	Context      Context

	Result  string
	Salvage []*world.Salvage
}

// NewEncounter creates a round-1 encounter awaiting actions.
func NewEncounter(id string, sectorID int, initiatorID, reason string, deadline time.Time) *Encounter {
	return &Encounter{
		ID:           id,
		SectorID:     sectorID,
		Round:        1,
		State:        StateAwaitingRound,
		Deadline:     deadline,
		Participants: map[string]*Combatant{},
		Pending:      map[string]Action{},
		Context:      Context{InitiatorID: initiatorID, Reason: reason},
	}
}

// AddCombatant registers a participant. Adding an existing id refreshes
// nothing and is not an error, so merge paths stay idempotent.
func (e *Encounter) AddCombatant(c *Combatant) {
	if _, ok := e.Participants[c.ID]; ok {
		return
	}
	e.Participants[c.ID] = c
}

// CaptureGarrison pulls a garrison into the fight, recording the original
// record for reinstatement.
func (e *Encounter) CaptureGarrison(g *world.Garrison) *Combatant {
	id := garrisonCombatantID(g)
	if existing, ok := e.Participants[id]; ok {
		return existing
	}
	c := &Combatant{
		ID:               id,
		Kind:             CombatantGarrison,
		Name:             "garrison of sector " + strconv.Itoa(g.SectorID),
		Fighters:         g.Fighters,
		MaxFighters:      g.Fighters,
		OwnerCharacterID: g.OwnerID,
		GarrisonMode:     g.Mode,
	}
	e.Participants[id] = c
	e.Context.CapturedGarrisons = append(e.Context.CapturedGarrisons, g)
	return c
}

// GarrisonCombatant returns the participant entry for a captured
// garrison record, or nil.
func (e *Encounter) GarrisonCombatant(g *world.Garrison) *Combatant {
	return e.Participants[garrisonCombatantID(g)]
}

// GarrisonFor returns the captured garrison record behind a garrison
// combatant id, or nil.
func (e *Encounter) GarrisonFor(combatantID string) *world.Garrison {
	for _, g := range e.Context.CapturedGarrisons {
		if garrisonCombatantID(g) == combatantID {
			return g
		}
	}
	return nil
}

// SubmitAction validates and stores a pending action for the round.
func (e *Encounter) SubmitAction(combatantID string, action Action, round int) error {
	if e.State == StateEnded {
		return shared.NewConflictError("encounter has ended")
	}
	if round != e.Round {
		return shared.NewStaleRoundError(round, e.Round)
	}
	actor, ok := e.Participants[combatantID]
	if !ok {
		return shared.NewNotFoundError("combatant", combatantID)
	}
	if !actor.Live() {
		return shared.NewConflictError("combatant is out of the fight")
	}
	if err := action.Validate(actor, e); err != nil {
		return err
	}
	e.Pending[combatantID] = action
	return nil
}

// AllActionsIn reports whether every live character participant has a
// pending action. Garrison orders are synthesized at resolution, so only
// characters gate the fast path.
func (e *Encounter) AllActionsIn() bool {
	for id, c := range e.Participants {
		if c.Kind != CombatantCharacter || !c.Live() {
			continue
		}
		if _, ok := e.Pending[id]; !ok {
			return false
		}
	}
	return true
}

// Live returns the live participants in unspecified order.
func (e *Encounter) Live() []*Combatant {
	out := make([]*Combatant, 0, len(e.Participants))
	for _, c := range e.Participants {
		if c.Live() {
			out = append(out, c)
		}
	}
	return out
}

// LiveSides counts the distinct allegiances still standing.
func (e *Encounter) LiveSides() int {
	sides := map[string]struct{}{}
	for _, c := range e.Participants {
		if c.Live() {
			sides[c.Side()] = struct{}{}
		}
	}
	return len(sides)
}

// CharacterIDs returns the character participants' ids, fled or not, for
// event addressing, plus the owners of participating garrisons.
func (e *Encounter) InterestedCharacterIDs() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, c := range e.Participants {
		if c.Kind == CombatantCharacter || c.Kind == CombatantEscapePod {
			add(c.ID)
		}
		add(c.OwnerCharacterID)
	}
	return out
}

// TollGarrisonsAgainst returns the toll-mode garrison combatants opposing
// the given character.
func (e *Encounter) TollGarrisonsAgainst(characterID string) []*Combatant {
	var out []*Combatant
	for _, c := range e.Participants {
		if c.Kind == CombatantGarrison && c.Live() &&
			c.GarrisonMode == world.GarrisonToll && c.OwnerCharacterID != characterID {
			out = append(out, c)
		}
	}
	return out
}

// AdvanceRound clears pending actions and opens the next round.
func (e *Encounter) AdvanceRound(deadline time.Time) {
	e.Round++
	e.Pending = map[string]Action{}
	e.Deadline = deadline
	e.State = StateAwaitingRound
}

// End marks the encounter terminal with the given result.
func (e *Encounter) End(result string) {
	e.State = StateEnded
	e.Result = result
	e.Pending = map[string]Action{}
}

func garrisonCombatantID(g *world.Garrison) string {
	return "garrison-" + strconv.Itoa(g.SectorID) + "-" + g.OwnerID
}
