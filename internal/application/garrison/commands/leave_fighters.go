package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// LeaveFightersCommand stations ship fighters as a garrison in the
// character's current sector
type LeaveFightersCommand struct {
	CharacterID string `json:"character_id"`
	Fighters    int    `json:"fighters"`
	Mode        string `json:"mode"`
	TollAmount  int    `json:"toll_amount,omitempty"`
}

// LeaveFightersResponse reports the resulting garrison
type LeaveFightersResponse struct {
	SectorID     int
	Fighters     int
	Mode         string
	ShipFighters int
}

// LeaveFightersHandler deploys or reinforces a garrison. A sector holds
// at most one garrison; another owner's presence rejects the deploy.
type LeaveFightersHandler struct {
	bus        *appevents.Bus
	index      *sector.Index
	characters world.CharacterRepository
	ships      world.ShipRepository
	garrisons  world.GarrisonRepository
}

// NewLeaveFightersHandler creates a new garrison deploy handler
func NewLeaveFightersHandler(
	bus *appevents.Bus,
	index *sector.Index,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	garrisons world.GarrisonRepository,
) *LeaveFightersHandler {
	return &LeaveFightersHandler{
		bus:        bus,
		index:      index,
		characters: characters,
		ships:      ships,
		garrisons:  garrisons,
	}
}

// Handle executes the combat_leave_fighters command
func (h *LeaveFightersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*LeaveFightersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Fighters <= 0 {
		return nil, shared.NewTypeError("fighters", "must be a positive integer")
	}
	mode, err := world.ParseGarrisonMode(cmd.Mode)
	if err != nil {
		return nil, err
	}
	if mode == world.GarrisonToll && cmd.TollAmount < 0 {
		return nil, shared.NewTypeError("toll_amount", "must be non-negative")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	if ship.Fighters < cmd.Fighters {
		return nil, shared.NewValidationError("fighters",
			"ship carries only "+strconv.Itoa(ship.Fighters)+" fighters")
	}

	garrison, err := h.garrisons.FindBySector(ctx, character.SectorID)
	if err == nil {
		if garrison.OwnerID != character.ID {
			return nil, shared.NewConflictError("sector already holds another owner's garrison")
		}
		garrison.Fighters += cmd.Fighters
		garrison.Mode = mode
		garrison.TollAmount = cmd.TollAmount
	} else {
		garrison = &world.Garrison{
			SectorID:   character.SectorID,
			OwnerID:    character.ID,
			Fighters:   cmd.Fighters,
			Mode:       mode,
			TollAmount: cmd.TollAmount,
		}
	}

	ship.Fighters -= cmd.Fighters
	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.garrisons.Save(ctx, garrison); err != nil {
		return nil, err
	}
	h.index.SetGarrison(garrison)

	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.GarrisonDeployed,
		Payload: events.GarrisonPayload(garrison, false),
		Summary: character.Name + " stationed " + strconv.Itoa(cmd.Fighters) + " fighters",
		Filter:  events.ToSector(character.SectorID, ""),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.GarrisonDeployed,
			"error": err.Error(),
		})
	}

	return &LeaveFightersResponse{
		SectorID:     garrison.SectorID,
		Fighters:     garrison.Fighters,
		Mode:         string(garrison.Mode),
		ShipFighters: ship.Fighters,
	}, nil
}
