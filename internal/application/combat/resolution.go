package combat

import (
	"context"

	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// resolveRound closes the encounter's current round. Callers hold the
// sector's combat lock.
func (m *Manager) resolveRound(ctx context.Context, encounter *combat.Encounter) error {
	outcome := m.resolver.Resolve(encounter)

	roundSalvage, err := m.persistOutcome(ctx, encounter, outcome)
	if err != nil {
		return err
	}
	m.syncParticipants(encounter)

	m.emit(ctx, events.Event{
		Name:    events.CombatRoundResolved,
		Payload: m.roundResolvedPayload(encounter, outcome, roundSalvage),
		Filter:  events.ToCharacters(encounter.InterestedCharacterIDs()...),
	})

	if outcome.Ended {
		encounter.End(outcome.Result)
		return m.finishEncounter(ctx, encounter, roundSalvage)
	}

	encounter.AdvanceRound(m.clock.Now().Add(m.settings.RoundWindow))
	m.emit(ctx, events.Event{
		Name:    events.CombatRoundWaiting,
		Payload: m.encounterPayload(encounter),
		Filter:  events.ToCharacters(encounter.InterestedCharacterIDs()...),
	})
	return nil
}

// persistOutcome writes combatant state back to the world: ship damage,
// flee movement, escape-pod conversion and garrison destruction.
func (m *Manager) persistOutcome(ctx context.Context, encounter *combat.Encounter, outcome *combat.Outcome) ([]*world.Salvage, error) {
	var roundSalvage []*world.Salvage

	fled := map[string]int{}
	for _, fr := range outcome.FleeResults {
		if fr.Success {
			fled[fr.CombatantID] = fr.Destination
		}
	}

	for id, combatant := range encounter.Participants {
		if combatant.Kind == combat.CombatantGarrison {
			continue
		}
		character, err := m.characters.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		ship, err := m.ships.FindByID(ctx, character.ShipID)
		if err != nil {
			return nil, err
		}

		ship.Fighters = combatant.Fighters
		ship.Shields = combatant.Shields

		if destination, ok := fled[id]; ok {
			shipType, err := m.catalog.Type(ship.TypeName)
			if err != nil {
				return nil, err
			}
			cost := shipType.TurnsPerWarp * m.settings.WarpCostPerTurn
			if ship.WarpPower < cost {
				cost = ship.WarpPower
			}
			ship.WarpPower -= cost
			character.SectorID = destination
			m.index.SetCharacter(id, destination, false)
		}

		if combatant.Defeated {
			salvage, err := m.convertToEscapePod(ctx, character, ship, encounter.SectorID)
			if err != nil {
				return nil, err
			}
			if salvage != nil {
				roundSalvage = append(roundSalvage, salvage)
				encounter.Salvage = append(encounter.Salvage, salvage)
			}
			continue
		}

		if err := m.ships.Save(ctx, ship); err != nil {
			return nil, err
		}
		if err := m.characters.Save(ctx, character); err != nil {
			return nil, err
		}
	}

	// Sync surviving garrison strength into the captured records; the
	// repository rows are written when the encounter finishes.
	for _, g := range encounter.Context.CapturedGarrisons {
		if combatant := encounter.GarrisonCombatant(g); combatant != nil {
			g.Fighters = combatant.Fighters
		}
	}
	return roundSalvage, nil
}

// convertToEscapePod swaps a defeated character onto an escape pod,
// dumping their hold into a salvage container that names only the lost
// hull, never the character.
func (m *Manager) convertToEscapePod(ctx context.Context, character *world.Character, ship *world.Ship, sectorID int) (*world.Salvage, error) {
	var salvage *world.Salvage
	shipType, err := m.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	if !ship.Cargo.IsEmpty() || ship.Credits > 0 || shipType.TradeInValue > 0 {
		salvage = &world.Salvage{
			ID:             utils.GenerateSalvageID(sectorID),
			SectorID:       sectorID,
			Cargo:          ship.Cargo.Clone(),
			Scrap:          shipType.TradeInValue / 100,
			Credits:        ship.Credits,
			ExpiresAt:      m.clock.Now().Add(m.settings.SalvageTTL),
			SourceShipName: ship.Name,
			SourceShipType: ship.TypeName,
		}
		if err := m.salvage.Save(ctx, salvage); err != nil {
			return nil, err
		}
		m.index.AddSalvage(sectorID, salvage.ID)
	}

	ship.OwnerKind = world.ShipOwnerUnowned
	ship.OwnerID = ""
	ship.Cargo = shared.Cargo{}
	ship.Credits = 0
	ship.Fighters = 0
	ship.Shields = 0
	if err := m.ships.Save(ctx, ship); err != nil {
		return nil, err
	}

	podType, err := m.catalog.Type(world.EscapePodType)
	if err != nil {
		return nil, err
	}
	pod := &world.Ship{
		ID:        utils.GenerateShipID(),
		Name:      character.Name + "'s escape pod",
		TypeName:  world.EscapePodType,
		OwnerKind: world.ShipOwnerCharacter,
		OwnerID:   character.ID,
		Fighters:  0,
		Shields:   0,
		WarpPower: podType.WarpPowerCapacity,
		Cargo:     shared.Cargo{},
	}
	if err := m.ships.Save(ctx, pod); err != nil {
		return nil, err
	}

	character.ShipID = pod.ID
	if err := m.characters.Save(ctx, character); err != nil {
		return nil, err
	}
	return salvage, nil
}

// payToll is the short-circuit path: paying the full toll owed to every
// toll garrison ends the encounter with no damage phase and no salvage.
// Partial coverage fails wholly.
func (m *Manager) payToll(ctx context.Context, encounter *combat.Encounter, characterID string, round int) error {
	if round != encounter.Round {
		return shared.NewStaleRoundError(round, encounter.Round)
	}
	tolls := encounter.TollGarrisonsAgainst(characterID)
	if len(tolls) == 0 {
		return shared.NewValidationError("action", "no toll is owed in this encounter")
	}

	var owed int
	garrisonRecords := make([]*world.Garrison, 0, len(tolls))
	for _, combatant := range tolls {
		g := encounter.GarrisonFor(combatant.ID)
		if g == nil {
			return shared.NewDomainError("toll garrison has no captured record")
		}
		owed += g.TollAmount
		garrisonRecords = append(garrisonRecords, g)
	}

	guard, err := m.locks.Acquire(ctx, locks.CreditKey(characterID))
	if err != nil {
		return err
	}
	defer guard.Release()

	character, err := m.characters.FindByID(ctx, characterID)
	if err != nil {
		return err
	}
	if err := character.Debit(owed); err != nil {
		return err
	}
	if err := m.characters.Save(ctx, character); err != nil {
		return err
	}
	for _, g := range garrisonRecords {
		g.TollBalance += g.TollAmount
	}

	m.emit(ctx, events.Event{
		Name:    events.StatusUpdate,
		Payload: map[string]interface{}{"character": events.CharacterPayload(character), "credits": events.CreditsPayload(character)},
		Filter:  events.ToCharacters(characterID),
	})

	encounter.End(combat.ResultTollSatisfied)
	return m.finishEncounter(ctx, encounter, nil)
}

// finishEncounter reinstates surviving garrisons, removes the encounter
// from the live maps and announces the terminal state.
func (m *Manager) finishEncounter(ctx context.Context, encounter *combat.Encounter, roundSalvage []*world.Salvage) error {
	for _, g := range encounter.Context.CapturedGarrisons {
		if g.Fighters > 0 {
			if err := m.garrisons.Save(ctx, g); err != nil {
				return err
			}
			m.index.SetGarrison(g)
		} else {
			if err := m.garrisons.Delete(ctx, g.SectorID); err != nil {
				return err
			}
		}
	}

	m.mu.Lock()
	delete(m.encounters, encounter.ID)
	delete(m.bySector, encounter.SectorID)
	for id, combatID := range m.byCharacter {
		if combatID == encounter.ID {
			delete(m.byCharacter, id)
		}
	}
	m.mu.Unlock()

	m.emit(ctx, events.Event{
		Name:    events.CombatEnded,
		Payload: m.endedPayload(encounter),
		Summary: "combat in sector " + itoa(encounter.SectorID) + " ended: " + encounter.Result,
		Filter:  events.ToCharacters(encounter.InterestedCharacterIDs()...),
	})

	// Out-of-combat observers see the garrison and salvage deltas.
	m.emit(ctx, events.Event{
		Name:    events.SectorUpdate,
		Payload: m.sectorViewPayload(ctx, encounter.SectorID),
		Filter:  events.ToSector(encounter.SectorID, ""),
	})
	return nil
}
