package combat

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// Settings are the combat-related knobs from the game configuration.
type Settings struct {
	RoundWindow     time.Duration
	MaxParticipants int
	SalvageTTL      time.Duration
	WarpCostPerTurn int
}

// Manager owns the live encounters. All mutation of one sector's
// encounter happens under that sector's combat lock; the live maps are
// additionally guarded for cross-sector lookups.
type Manager struct {
	settings Settings
	locks    *locks.Manager
	resolver *combat.Resolver
	clock    shared.Clock
	bus      *appevents.Bus
	index    *sector.Index
	universe *world.Universe
	catalog  world.ShipCatalog

	characters world.CharacterRepository
	ships      world.ShipRepository
	garrisons  world.GarrisonRepository
	salvage    world.SalvageRepository

	mu          sync.Mutex
	encounters  map[string]*combat.Encounter
	bySector    map[int]string
	byCharacter map[string]string
}

// NewManager wires a combat manager.
func NewManager(
	settings Settings,
	lockManager *locks.Manager,
	resolver *combat.Resolver,
	clock shared.Clock,
	bus *appevents.Bus,
	index *sector.Index,
	universe *world.Universe,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	garrisons world.GarrisonRepository,
	salvage world.SalvageRepository,
) *Manager {
	return &Manager{
		settings:    settings,
		locks:       lockManager,
		resolver:    resolver,
		clock:       clock,
		bus:         bus,
		index:       index,
		universe:    universe,
		catalog:     catalog,
		characters:  characters,
		ships:       ships,
		garrisons:   garrisons,
		salvage:     salvage,
		encounters:  map[string]*combat.Encounter{},
		bySector:    map[int]string{},
		byCharacter: map[string]string{},
	}
}

// FindEncounterInSector returns the sector's live encounter, or nil.
func (m *Manager) FindEncounterInSector(sectorID int) *combat.Encounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.bySector[sectorID]; ok {
		return m.encounters[id]
	}
	return nil
}

// FindEncounterFor returns the encounter the character participates in,
// or nil. The lookup reads only the participant index, never the
// encounter internals, so it is safe against concurrent round
// resolution in other sectors.
func (m *Manager) FindEncounterFor(characterID string) *combat.Encounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byCharacter[characterID]; ok {
		return m.encounters[id]
	}
	return nil
}

// StartEncounter begins (or merges into) combat in a sector. When an
// encounter already exists the initiator and all present characters are
// added and any newly requested garrison captured; otherwise a fresh
// round-1 encounter is built from the sector's occupants.
func (m *Manager) StartEncounter(ctx context.Context, sectorID int, initiatorID, reason string, captureGarrison bool) (*combat.Encounter, error) {
	guard, err := m.locks.Acquire(ctx, locks.CombatKey(sectorID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if existing := m.FindEncounterInSector(sectorID); existing != nil {
		if err := m.mergeInto(ctx, existing, initiatorID, captureGarrison); err != nil {
			return nil, err
		}
		m.syncParticipants(existing)
		m.emit(ctx, events.Event{
			Name:    events.CombatRefresh,
			Payload: m.encounterPayload(existing),
			Filter:  events.ToCharacters(existing.InterestedCharacterIDs()...),
		})
		return existing, nil
	}

	encounter := combat.NewEncounter(
		utils.GenerateCombatID(sectorID),
		sectorID,
		initiatorID,
		reason,
		m.clock.Now().Add(m.settings.RoundWindow),
	)

	for _, characterID := range m.index.Occupants(sectorID) {
		combatant, err := m.characterCombatant(ctx, characterID)
		if err != nil {
			return nil, err
		}
		encounter.AddCombatant(combatant)
	}

	if captureGarrison {
		if err := m.captureSectorGarrison(ctx, encounter); err != nil {
			return nil, err
		}
	}

	if len(encounter.Participants) <= 1 {
		return nil, shared.NewNoOpponentsError(sectorID)
	}
	if m.settings.MaxParticipants > 0 && len(encounter.Participants) > m.settings.MaxParticipants {
		return nil, shared.NewConflictError("sector combat participant cap exceeded")
	}

	m.mu.Lock()
	m.encounters[encounter.ID] = encounter
	m.bySector[sectorID] = encounter.ID
	m.mu.Unlock()
	m.syncParticipants(encounter)

	m.emit(ctx, events.Event{
		Name:    events.CombatRoundWaiting,
		Payload: m.encounterPayload(encounter),
		Summary: "combat started in sector " + itoa(sectorID),
		Filter:  events.ToCharacters(encounter.InterestedCharacterIDs()...),
	})
	m.alertGarrisonOwners(ctx, encounter)
	return encounter, nil
}

// EngageOnArrival folds an arriving character into the sector's live
// encounter, or auto-starts one against a hostile garrison. Callers do
// not hold the combat lock.
func (m *Manager) EngageOnArrival(ctx context.Context, characterID string, sectorID int) (*combat.Encounter, error) {
	if existing := m.FindEncounterInSector(sectorID); existing != nil {
		return m.StartEncounter(ctx, sectorID, characterID, existing.Context.Reason, false)
	}

	snapshot := m.index.Snapshot(sectorID)
	g := snapshot.Garrison
	if g == nil || g.OwnerID == characterID {
		return nil, nil
	}
	if g.Mode == world.GarrisonDefensive {
		return nil, nil
	}
	return m.StartEncounter(ctx, sectorID, characterID, "garrison_intercept", true)
}

// SubmitAction validates and stores a round action. Pay short-circuits
// the encounter when it covers every toll owed; otherwise, once all live
// characters have acted the round resolves immediately.
func (m *Manager) SubmitAction(ctx context.Context, combatID, characterID string, action combat.Action, round int) error {
	encounter, sectorID, err := m.lookup(combatID)
	if err != nil {
		return err
	}

	guard, err := m.locks.Acquire(ctx, locks.CombatKey(sectorID))
	if err != nil {
		return err
	}
	defer guard.Release()

	if encounter.State == combat.StateEnded {
		return shared.NewConflictError("encounter has ended")
	}

	if action.Kind == combat.ActionFlee {
		if !m.universe.AreAdjacent(encounter.SectorID, action.DestinationSector) {
			return shared.NewValidationError("destination_sector", "not adjacent to combat sector")
		}
	}

	if action.Kind == combat.ActionPay {
		return m.payToll(ctx, encounter, characterID, round)
	}

	if err := encounter.SubmitAction(characterID, action, round); err != nil {
		return err
	}

	if encounter.AllActionsIn() {
		return m.resolveRound(ctx, encounter)
	}
	return nil
}

// ResolveDue closes every encounter whose deadline has passed. The
// deadline sweeper calls this on its poll cadence. The scan only
// collects candidates; state and deadline are read under each sector's
// combat lock, so a round resolved concurrently by the submit path is
// skipped.
func (m *Manager) ResolveDue(ctx context.Context, now time.Time) {
	m.mu.Lock()
	due := make([]*combat.Encounter, 0, len(m.encounters))
	for _, e := range m.encounters {
		due = append(due, e)
	}
	m.mu.Unlock()

	for _, encounter := range due {
		guard, err := m.locks.Acquire(ctx, locks.CombatKey(encounter.SectorID))
		if err != nil {
			return
		}
		if encounter.State == combat.StateAwaitingRound && now.After(encounter.Deadline) {
			if err := m.resolveRound(ctx, encounter); err != nil {
				common.LoggerFromContext(ctx).Log("error", "deadline resolution failed", map[string]interface{}{
					"combat_id": encounter.ID,
					"error":     err.Error(),
				})
			}
		}
		guard.Release()
	}
}

// Terminate ends an encounter by admin decree.
func (m *Manager) Terminate(ctx context.Context, combatID string) error {
	encounter, sectorID, err := m.lookup(combatID)
	if err != nil {
		return err
	}
	guard, err := m.locks.Acquire(ctx, locks.CombatKey(sectorID))
	if err != nil {
		return err
	}
	defer guard.Release()

	if encounter.State == combat.StateEnded {
		return nil
	}
	encounter.End(combat.ResultAdminTerminated)
	return m.finishEncounter(ctx, encounter, nil)
}

// Reset drops all live encounters. Used by test_reset only.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encounters = map[string]*combat.Encounter{}
	m.bySector = map[int]string{}
	m.byCharacter = map[string]string{}
}

// syncParticipants rebuilds the participant index entries for one
// encounter: live character combatants map to the encounter, defeated
// and fled ones drop out. Callers hold the sector's combat lock, so the
// participant map is stable while this reads it.
func (m *Manager) syncParticipants(encounter *combat.Encounter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range encounter.Participants {
		if c.Kind == combat.CombatantGarrison {
			continue
		}
		if c.Live() {
			m.byCharacter[id] = encounter.ID
		} else if m.byCharacter[id] == encounter.ID {
			delete(m.byCharacter, id)
		}
	}
}

func (m *Manager) lookup(combatID string) (*combat.Encounter, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	encounter, ok := m.encounters[combatID]
	if !ok {
		return nil, 0, shared.NewNotFoundError("encounter", combatID)
	}
	return encounter, encounter.SectorID, nil
}

func (m *Manager) mergeInto(ctx context.Context, encounter *combat.Encounter, initiatorID string, captureGarrison bool) error {
	for _, characterID := range m.index.Occupants(encounter.SectorID) {
		if _, ok := encounter.Participants[characterID]; ok {
			continue
		}
		if m.settings.MaxParticipants > 0 && len(encounter.Participants) >= m.settings.MaxParticipants {
			return shared.NewConflictError("sector combat participant cap exceeded")
		}
		combatant, err := m.characterCombatant(ctx, characterID)
		if err != nil {
			return err
		}
		encounter.AddCombatant(combatant)
	}
	if _, ok := encounter.Participants[initiatorID]; !ok {
		combatant, err := m.characterCombatant(ctx, initiatorID)
		if err != nil {
			return err
		}
		encounter.AddCombatant(combatant)
	}
	if captureGarrison {
		if err := m.captureSectorGarrison(ctx, encounter); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) captureSectorGarrison(ctx context.Context, encounter *combat.Encounter) error {
	g, err := m.garrisons.FindBySector(ctx, encounter.SectorID)
	if err != nil {
		return nil // no garrison to capture
	}
	encounter.CaptureGarrison(g)
	// A fighting garrison leaves the sector map until the encounter ends.
	m.index.ClearGarrison(encounter.SectorID)
	return nil
}

func (m *Manager) characterCombatant(ctx context.Context, characterID string) (*combat.Combatant, error) {
	character, err := m.characters.FindByID(ctx, characterID)
	if err != nil {
		return nil, err
	}
	ship, err := m.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := m.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}
	kind := combat.CombatantCharacter
	if ship.TypeName == world.EscapePodType {
		kind = combat.CombatantEscapePod
	}
	return &combat.Combatant{
		ID:               characterID,
		Kind:             kind,
		Name:             character.Name,
		Fighters:         ship.Fighters,
		Shields:          ship.Shields,
		MaxFighters:      shipType.MaxFighters,
		MaxShields:       shipType.MaxShields,
		OwnerCharacterID: characterID,
		WarpPower:        ship.WarpPower,
		WarpCapacity:     shipType.WarpPowerCapacity,
	}, nil
}

func (m *Manager) alertGarrisonOwners(ctx context.Context, encounter *combat.Encounter) {
	for _, g := range encounter.Context.CapturedGarrisons {
		m.emit(ctx, events.Event{
			Name:    events.GarrisonCombatAlert,
			Payload: events.GarrisonPayload(g, true),
			Summary: "your garrison in sector " + itoa(g.SectorID) + " is under attack",
			Filter:  events.ToCharacters(g.OwnerID),
		})
	}
}

func (m *Manager) emit(ctx context.Context, evt events.Event) {
	if err := m.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}
