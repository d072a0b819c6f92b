package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// MyMapCommand requests the character's accumulated map intel
type MyMapCommand struct {
	CharacterID string `json:"character_id"`
}

// MyMapResponse carries the knowledge payload
type MyMapResponse struct {
	Knowledge map[string]interface{}
}

// MyMapHandler renders the per-character visited-sector knowledge
type MyMapHandler struct {
	bus       *appevents.Bus
	knowledge world.KnowledgeRepository
}

// NewMyMapHandler creates a new map handler
func NewMyMapHandler(bus *appevents.Bus, knowledge world.KnowledgeRepository) *MyMapHandler {
	return &MyMapHandler{bus: bus, knowledge: knowledge}
}

// Handle executes the my_map command
func (h *MyMapHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MyMapCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	intel, err := h.knowledge.Find(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}

	payload := knowledgePayload(intel)
	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.MapKnowledge,
		Payload: payload,
		Filter:  events.ToCharacters(cmd.CharacterID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.MapKnowledge,
			"error": err.Error(),
		})
	}

	return &MyMapResponse{Knowledge: payload}, nil
}

func knowledgePayload(k *world.Knowledge) map[string]interface{} {
	sectorIDs := make([]int, 0, len(k.Visited))
	for id := range k.Visited {
		sectorIDs = append(sectorIDs, id)
	}
	sort.Ints(sectorIDs)

	visited := make(map[string]interface{}, len(k.Visited))
	for _, id := range sectorIDs {
		intel := k.Visited[id]
		entry := map[string]interface{}{
			"last_visited": intel.LastVisited,
			"adjacent":     intel.Adjacent,
		}
		if intel.PortCode != "" {
			entry["port_code"] = intel.PortCode
		}
		visited[strconv.Itoa(id)] = entry
	}
	return map[string]interface{}{
		"character_id": k.CharacterID,
		"visited":      visited,
	}
}
