package commands

import (
	"context"
	"fmt"
	"strconv"

	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// MoveCommand warps a character to an adjacent sector
type MoveCommand struct {
	CharacterID string `json:"character_id"`
	ToSector    int    `json:"to_sector"`
}

// MoveResponse reports the arrival sector and any combat engaged on entry
type MoveResponse struct {
	SectorID   int
	WarpCost   int
	CombatID   string
	SectorView map[string]interface{}
}

// MoveHandler performs sector movement: warp power accounting, index and
// knowledge updates, arrival events and the auto-combat check.
type MoveHandler struct {
	rules      common.Rules
	clock      shared.Clock
	bus        *appevents.Bus
	locks      *locks.Manager
	index      *sector.Index
	builder    *view.Builder
	combat     *appcombat.Manager
	universe   *world.Universe
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	ports      world.PortRepository
	knowledge  world.KnowledgeRepository
}

// NewMoveHandler creates a new move handler
func NewMoveHandler(
	rules common.Rules,
	clock shared.Clock,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	index *sector.Index,
	builder *view.Builder,
	combatManager *appcombat.Manager,
	universe *world.Universe,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	ports world.PortRepository,
	knowledge world.KnowledgeRepository,
) *MoveHandler {
	return &MoveHandler{
		rules:      rules,
		clock:      clock,
		bus:        bus,
		locks:      lockManager,
		index:      index,
		builder:    builder,
		combat:     combatManager,
		universe:   universe,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		ports:      ports,
		knowledge:  knowledge,
	}
}

// Handle executes the move command
func (h *MoveHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MoveCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if !h.universe.Exists(cmd.ToSector) {
		return nil, shared.NewNotFoundError("sector", strconv.Itoa(cmd.ToSector))
	}
	if !h.universe.AreAdjacent(character.SectorID, cmd.ToSector) {
		return nil, shared.NewValidationError("to_sector", "not adjacent to current sector")
	}

	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	warpCost := shipType.TurnsPerWarp * h.rules.WarpCostPerTurn
	if ship.WarpPower < warpCost {
		return nil, shared.NewValidationError("warp_power",
			"need "+strconv.Itoa(warpCost)+" warp power, have "+strconv.Itoa(ship.WarpPower))
	}

	fromSector := character.SectorID

	h.emit(ctx, events.Event{
		Name: events.MovementStart,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"from_sector":  fromSector,
			"to_sector":    cmd.ToSector,
			"warp_cost":    warpCost,
		},
		Filter: events.ToCharacters(character.ID),
	})

	ship.WarpPower -= warpCost
	character.SectorID = cmd.ToSector
	character.Touch(h.clock.Now())
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}
	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}
	h.index.SetCharacter(character.ID, cmd.ToSector, false)

	if err := h.recordIntel(ctx, character); err != nil {
		return nil, err
	}

	h.emit(ctx, events.Event{
		Name: events.CharacterMoved,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"name":         character.Name,
			"departed":     true,
			"sector_id":    fromSector,
		},
		Summary: character.Name + " departed",
		Filter:  events.ToSector(fromSector, character.ID),
	})

	sectorView, err := h.builder.SectorView(ctx, cmd.ToSector)
	if err != nil {
		return nil, err
	}
	h.emit(ctx, events.Event{
		Name: events.MovementComplete,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"sector_id":    cmd.ToSector,
			"warp_power":   ship.WarpPower,
			"sector":       sectorView,
		},
		Filter: events.ToCharacters(character.ID),
	})
	h.emit(ctx, events.Event{
		Name:    events.CharacterMoved,
		Payload: events.CharacterPayload(character),
		Summary: character.Name + " arrived",
		Filter:  events.ToSector(cmd.ToSector, character.ID),
	})

	response := &MoveResponse{SectorID: cmd.ToSector, WarpCost: warpCost, SectorView: sectorView}

	// Arrival may fold the character into live combat or trip a hostile
	// garrison. Errors here do not undo the move.
	encounter, err := h.combat.EngageOnArrival(ctx, character.ID, cmd.ToSector)
	if err != nil {
		common.LoggerFromContext(ctx).Log("warn", "auto-combat on arrival failed", map[string]interface{}{
			"character_id": character.ID,
			"sector_id":    cmd.ToSector,
			"error":        err.Error(),
		})
	} else if encounter != nil {
		response.CombatID = encounter.ID
	}

	return response, nil
}

func (h *MoveHandler) recordIntel(ctx context.Context, character *world.Character) error {
	guard, err := h.locks.Acquire(ctx, locks.KnowledgeKey(character.ID))
	if err != nil {
		return err
	}
	defer guard.Release()

	intel, err := h.knowledge.Find(ctx, character.ID)
	if err != nil {
		return err
	}
	topo, err := h.universe.Sector(character.SectorID)
	if err != nil {
		return err
	}
	entry := world.SectorIntel{
		LastVisited: character.LastActive,
		Adjacent:    topo.Adjacent,
	}
	if topo.HasPort {
		// Port code is static per sector; remember it for my_map.
		if port, err := h.ports.FindBySector(ctx, character.SectorID); err == nil {
			entry.PortCode = port.Code
		}
	}
	intel.Record(character.SectorID, entry)
	return h.knowledge.Save(ctx, intel)
}

func (h *MoveHandler) emit(ctx context.Context, evt events.Event) {
	if err := h.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}
