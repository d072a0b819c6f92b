package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// SendChatCommand relays a chat line to a sector or corporation audience
type SendChatCommand struct {
	CharacterID string `json:"character_id"`
	Scope       string `json:"scope"`
	Message     string `json:"message"`
}

// SendChatResponse acknowledges the relay
type SendChatResponse struct {
	Scope string
}

// SendChatHandler fans a chat.message event out to the sender's current
// sector or their corporation. Chat is not persisted; offline recipients
// miss it.
type SendChatHandler struct {
	bus        *appevents.Bus
	characters world.CharacterRepository
}

// NewSendChatHandler creates a new chat handler
func NewSendChatHandler(bus *appevents.Bus, characters world.CharacterRepository) *SendChatHandler {
	return &SendChatHandler{bus: bus, characters: characters}
}

// Handle executes the send_chat command
func (h *SendChatHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SendChatCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Message == "" {
		return nil, shared.NewValidationError("message", "must not be empty")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}

	var filter events.Filter
	switch cmd.Scope {
	case "sector", "":
		if character.InHyperspace {
			return nil, shared.NewConflictError("cannot use sector chat while in hyperspace")
		}
		filter = events.ToSector(character.SectorID, "")
	case "corporation":
		if character.CorporationID == "" {
			return nil, shared.NewConflictError("not a member of any corporation")
		}
		filter = events.ToCorporation(character.CorporationID)
	default:
		return nil, shared.NewValidationError("scope", "must be sector or corporation")
	}

	scope := cmd.Scope
	if scope == "" {
		scope = "sector"
	}
	if err := h.bus.Emit(ctx, events.Event{
		Name: events.ChatMessage,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"name":         character.Name,
			"scope":        scope,
			"message":      cmd.Message,
		},
		Summary: character.Name + ": " + cmd.Message,
		Filter:  filter,
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.ChatMessage,
			"error": err.Error(),
		})
	}

	return &SendChatResponse{Scope: scope}, nil
}
