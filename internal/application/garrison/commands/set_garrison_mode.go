package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// SetGarrisonModeCommand changes the standing order of the character's
// garrison in their current sector
type SetGarrisonModeCommand struct {
	CharacterID string `json:"character_id"`
	Mode        string `json:"mode"`
	TollAmount  int    `json:"toll_amount,omitempty"`
}

// SetGarrisonModeResponse reports the updated garrison
type SetGarrisonModeResponse struct {
	SectorID   int
	Mode       string
	TollAmount int
}

// SetGarrisonModeHandler updates garrison mode and toll settings
type SetGarrisonModeHandler struct {
	bus        *appevents.Bus
	index      *sector.Index
	characters world.CharacterRepository
	garrisons  world.GarrisonRepository
}

// NewSetGarrisonModeHandler creates a new garrison mode handler
func NewSetGarrisonModeHandler(
	bus *appevents.Bus,
	index *sector.Index,
	characters world.CharacterRepository,
	garrisons world.GarrisonRepository,
) *SetGarrisonModeHandler {
	return &SetGarrisonModeHandler{bus: bus, index: index, characters: characters, garrisons: garrisons}
}

// Handle executes the combat_set_garrison_mode command
func (h *SetGarrisonModeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SetGarrisonModeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
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
	garrison, err := h.garrisons.FindBySector(ctx, character.SectorID)
	if err != nil {
		return nil, err
	}
	if garrison.OwnerID != character.ID {
		return nil, shared.NewAuthorizationError("garrison belongs to another character")
	}

	garrison.Mode = mode
	if mode == world.GarrisonToll {
		garrison.TollAmount = cmd.TollAmount
	} else {
		garrison.TollAmount = 0
	}
	if err := h.garrisons.Save(ctx, garrison); err != nil {
		return nil, err
	}
	h.index.SetGarrison(garrison)

	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.GarrisonModeChanged,
		Payload: events.GarrisonPayload(garrison, false),
		Filter:  events.ToSector(character.SectorID, ""),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.GarrisonModeChanged,
			"error": err.Error(),
		})
	}

	return &SetGarrisonModeResponse{
		SectorID:   garrison.SectorID,
		Mode:       string(garrison.Mode),
		TollAmount: garrison.TollAmount,
	}, nil
}
