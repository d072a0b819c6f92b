package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// JoinCommand registers a new character in the world
type JoinCommand struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
}

// JoinResponse contains the new character's starting state
type JoinResponse struct {
	CharacterID string
	ShipID      string
	SectorID    int
	Status      map[string]interface{}
}

// JoinHandler creates the character, their starting ship and their first
// map intel entry.
type JoinHandler struct {
	rules      common.Rules
	clock      shared.Clock
	bus        *appevents.Bus
	index      *sector.Index
	builder    *view.Builder
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	knowledge  world.KnowledgeRepository
	universe   *world.Universe
}

// NewJoinHandler creates a new join handler
func NewJoinHandler(
	rules common.Rules,
	clock shared.Clock,
	bus *appevents.Bus,
	index *sector.Index,
	builder *view.Builder,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	knowledge world.KnowledgeRepository,
	universe *world.Universe,
) *JoinHandler {
	return &JoinHandler{
		rules:      rules,
		clock:      clock,
		bus:        bus,
		index:      index,
		builder:    builder,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		knowledge:  knowledge,
		universe:   universe,
	}
}

// Handle executes the join command
func (h *JoinHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*JoinCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if cmd.CharacterID == "" {
		return nil, shared.NewValidationError("character_id", "must not be empty")
	}
	if cmd.Name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}
	kind := world.CharacterKindHuman
	if cmd.Kind != "" {
		parsed, err := world.ParseCharacterKind(cmd.Kind)
		if err != nil {
			return nil, err
		}
		kind = parsed
	}

	taken, err := h.characters.Exists(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewConflictError("character already exists: " + cmd.CharacterID)
	}

	shipType, err := h.catalog.Type(h.rules.StartingShipType)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	ship := &world.Ship{
		ID:        utils.GenerateShipID(),
		Name:      cmd.Name + "'s " + shipType.Name,
		TypeName:  shipType.Name,
		OwnerKind: world.ShipOwnerCharacter,
		OwnerID:   cmd.CharacterID,
		Fighters:  startingFighters(shipType),
		Shields:   startingShields(shipType),
		WarpPower: shipType.WarpPowerCapacity,
		Cargo:     shared.Cargo{},
	}
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	character := &world.Character{
		ID:            cmd.CharacterID,
		Name:          cmd.Name,
		Kind:          kind,
		SectorID:      h.rules.StartingSectorID,
		LastActive:    now,
		CreditsOnHand: h.rules.StartingCredits,
		ShipID:        ship.ID,
	}

	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}
	h.index.SetCharacter(character.ID, character.SectorID, false)

	if err := h.recordIntel(ctx, character); err != nil {
		return nil, err
	}

	status, err := h.builder.StatusPayload(ctx, character)
	if err != nil {
		return nil, err
	}
	h.emit(ctx, events.Event{
		Name:    events.StatusSnapshot,
		Payload: status,
		Summary: character.Name + " joined the world",
		Filter:  events.ToCharacters(character.ID),
	})
	h.emit(ctx, events.Event{
		Name:    events.CharacterMoved,
		Payload: events.CharacterPayload(character),
		Summary: character.Name + " arrived",
		Filter:  events.ToSector(character.SectorID, character.ID),
	})

	return &JoinResponse{
		CharacterID: character.ID,
		ShipID:      ship.ID,
		SectorID:    character.SectorID,
		Status:      status,
	}, nil
}

func (h *JoinHandler) recordIntel(ctx context.Context, character *world.Character) error {
	topo, err := h.universe.Sector(character.SectorID)
	if err != nil {
		return err
	}
	intel := world.NewKnowledge(character.ID)
	intel.Record(topo.ID, world.SectorIntel{
		LastVisited: character.LastActive,
		Adjacent:    topo.Adjacent,
	})
	return h.knowledge.Save(ctx, intel)
}

func (h *JoinHandler) emit(ctx context.Context, evt events.Event) {
	if err := h.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}

// Starting loadout: a fraction of the hull maxima so a fresh character can
// defend themselves without arriving battle-ready.
func startingFighters(t *world.ShipType) int {
	return t.MaxFighters / 8
}

func startingShields(t *world.ShipType) int {
	return t.MaxShields / 2
}
