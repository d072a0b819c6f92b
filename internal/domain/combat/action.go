package combat

import "github.com/andrescamacho/tradewars-server/internal/domain/shared"

// ActionKind is a combatant's choice for one round.
type ActionKind string

const (
	ActionAttack  ActionKind = "attack"
	ActionBrace   ActionKind = "brace"
	ActionFlee    ActionKind = "flee"
	ActionPay     ActionKind = "pay"
	ActionTimeout ActionKind = "timeout"
)

// ParseActionKind validates a wire-level action kind. Timeout is internal
// and rejected at the boundary.
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case ActionAttack, ActionBrace, ActionFlee, ActionPay:
		return ActionKind(s), nil
	}
	return "", shared.NewValidationError("action", "unknown action kind "+s)
}

// Action is one round's submitted (or synthesized) order.
type Action struct {
	Kind              ActionKind
	Commit            int
	TargetID          string
	DestinationSector int
}

// Brace is the default order assigned to silent participants.
func Brace() Action {
	return Action{Kind: ActionBrace}
}

// Validate checks an action against the acting combatant and the
// encounter roster before it is stored.
func (a Action) Validate(actor *Combatant, e *Encounter) error {
	switch a.Kind {
	case ActionAttack:
		if a.Commit <= 0 {
			return shared.NewValidationError("commit", "attack must commit at least one fighter")
		}
		if a.Commit > actor.Fighters {
			return shared.NewValidationError("commit", "cannot commit more fighters than available")
		}
		target, ok := e.Participants[a.TargetID]
		if !ok {
			return shared.NewNotFoundError("combatant", a.TargetID)
		}
		if !target.Targetable() {
			return shared.NewConflictError("target cannot be attacked")
		}
		if a.TargetID == actor.ID {
			return shared.NewValidationError("target_id", "cannot attack yourself")
		}
	case ActionFlee:
		if actor.Kind != CombatantCharacter {
			return shared.NewConflictError("only characters can flee")
		}
	case ActionPay:
		if actor.Kind != CombatantCharacter {
			return shared.NewConflictError("only characters can pay a toll")
		}
	case ActionBrace:
	default:
		return shared.NewValidationError("action", "unknown action kind "+string(a.Kind))
	}
	return nil
}
