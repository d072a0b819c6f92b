package combat

import (
	"context"
	"sort"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

func itoa(n int) string { return strconv.Itoa(n) }

// combatantPayload renders one participant's live state.
func combatantPayload(c *combat.Combatant) map[string]interface{} {
	out := map[string]interface{}{
		"combatant_id": c.ID,
		"kind":         string(c.Kind),
		"name":         c.Name,
		"fighters":     c.Fighters,
		"shields":      c.Shields,
		"max_fighters": c.MaxFighters,
		"max_shields":  c.MaxShields,
	}
	if c.OwnerCharacterID != "" {
		out["owner_character_id"] = c.OwnerCharacterID
	}
	if c.Defeated {
		out["defeated"] = true
	}
	if c.Fled {
		out["fled"] = true
	}
	return out
}

// encounterPayload renders the waiting-round view of an encounter.
func (m *Manager) encounterPayload(e *combat.Encounter) map[string]interface{} {
	participants := make([]interface{}, 0, len(e.Participants))
	for _, c := range e.Participants {
		participants = append(participants, combatantPayload(c))
	}
	return map[string]interface{}{
		"combat_id":    e.ID,
		"sector_id":    e.SectorID,
		"round":        e.Round,
		"deadline":     e.Deadline,
		"reason":       e.Context.Reason,
		"initiator":    e.Context.InitiatorID,
		"participants": participants,
	}
}

// roundResolvedPayload renders a closed round: pre/post stats, the
// normalized action of every participant, flee results and salvage
// created this round.
func (m *Manager) roundResolvedPayload(e *combat.Encounter, outcome *combat.Outcome, roundSalvage []*world.Salvage) map[string]interface{} {
	participants := make([]interface{}, 0, len(outcome.Reports))
	for _, id := range sortedReportIDs(outcome) {
		report := outcome.Reports[id]
		combatant := e.Participants[id]
		entry := combatantPayload(combatant)
		entry["pre_fighters"] = report.PreFighters
		entry["pre_shields"] = report.PreShields
		entry["fighter_loss"] = report.FighterLoss
		entry["shield_damage"] = report.ShieldDamage
		participants = append(participants, entry)
	}

	actions := make(map[string]interface{}, len(outcome.Actions))
	for id, action := range outcome.Actions {
		entry := map[string]interface{}{"kind": string(action.Kind)}
		if action.Kind == combat.ActionAttack {
			entry["commit"] = action.Commit
			entry["target_id"] = action.TargetID
		}
		if action.Kind == combat.ActionFlee {
			entry["destination_sector"] = action.DestinationSector
		}
		actions[id] = entry
	}

	flees := make([]interface{}, 0, len(outcome.FleeResults))
	for _, fr := range outcome.FleeResults {
		flees = append(flees, map[string]interface{}{
			"combatant_id":       fr.CombatantID,
			"destination_sector": fr.Destination,
			"success":            fr.Success,
		})
	}

	salvage := make([]interface{}, 0, len(roundSalvage))
	for _, s := range roundSalvage {
		salvage = append(salvage, events.SalvagePayload(s))
	}

	return map[string]interface{}{
		"combat_id":    e.ID,
		"sector_id":    e.SectorID,
		"round":        outcome.Round,
		"participants": participants,
		"actions":      actions,
		"flee_results": flees,
		"salvage":      salvage,
	}
}

// endedPayload renders the terminal snapshot.
func (m *Manager) endedPayload(e *combat.Encounter) map[string]interface{} {
	participants := make([]interface{}, 0, len(e.Participants))
	for _, c := range e.Participants {
		participants = append(participants, combatantPayload(c))
	}
	salvage := make([]interface{}, 0, len(e.Salvage))
	for _, s := range e.Salvage {
		salvage = append(salvage, events.SalvagePayload(s))
	}
	return map[string]interface{}{
		"combat_id":    e.ID,
		"sector_id":    e.SectorID,
		"round":        e.Round,
		"result":       e.Result,
		"participants": participants,
		"salvage":      salvage,
	}
}

// sectorViewPayload renders the sector's post-combat contents for
// out-of-combat observers.
func (m *Manager) sectorViewPayload(ctx context.Context, sectorID int) map[string]interface{} {
	topology, err := m.universe.Sector(sectorID)
	if err != nil {
		topology = &world.Sector{ID: sectorID}
	}

	var occupants []*world.Character
	for _, id := range m.index.Occupants(sectorID) {
		if c, err := m.characters.FindByID(ctx, id); err == nil {
			occupants = append(occupants, c)
		}
	}

	snapshot := m.index.Snapshot(sectorID)
	var salvage []*world.Salvage
	for _, id := range snapshot.SalvageIDs {
		if s, err := m.salvage.FindByID(ctx, id); err == nil {
			salvage = append(salvage, s)
		}
	}
	return events.SectorViewPayload(topology, occupants, snapshot.Garrison, salvage, nil)
}

func sortedReportIDs(outcome *combat.Outcome) []string {
	ids := make([]string, 0, len(outcome.Reports))
	for id := range outcome.Reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
