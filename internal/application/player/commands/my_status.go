package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// MyStatusCommand requests a full private status snapshot
type MyStatusCommand struct {
	CharacterID string `json:"character_id"`
}

// MyStatusResponse carries the snapshot payload
type MyStatusResponse struct {
	Status map[string]interface{}
}

// MyStatusHandler renders and emits the requesting character's snapshot
type MyStatusHandler struct {
	bus        *appevents.Bus
	builder    *view.Builder
	characters world.CharacterRepository
}

// NewMyStatusHandler creates a new status handler
func NewMyStatusHandler(bus *appevents.Bus, builder *view.Builder, characters world.CharacterRepository) *MyStatusHandler {
	return &MyStatusHandler{bus: bus, builder: builder, characters: characters}
}

// Handle executes the my_status command
func (h *MyStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MyStatusCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	status, err := h.builder.StatusPayload(ctx, character)
	if err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.StatusSnapshot,
		Payload: status,
		Filter:  events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.StatusSnapshot,
			"error": err.Error(),
		})
	}

	return &MyStatusResponse{Status: status}, nil
}
