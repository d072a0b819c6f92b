package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// EventQueryCommand replays a character's delivered-event history
type EventQueryCommand struct {
	CharacterID   string `json:"character_id"`
	AfterSequence uint64 `json:"after_sequence,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// EventQueryResponse carries the replayed events in sequence order
type EventQueryResponse struct {
	Events []map[string]interface{}
}

// defaultQueryLimit caps replay size when the caller does not set one.
const defaultQueryLimit = 200

// EventQueryHandler reads the durable event log. Authorization (owner or
// admin) happens in the dispatcher before this handler runs.
type EventQueryHandler struct {
	log events.Log
}

// NewEventQueryHandler creates a new event query handler
func NewEventQueryHandler(log events.Log) *EventQueryHandler {
	return &EventQueryHandler{log: log}
}

// Handle executes the event_query command
func (h *EventQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*EventQueryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Limit < 0 {
		return nil, shared.NewTypeError("limit", "must be non-negative")
	}
	limit := cmd.Limit
	if limit == 0 {
		limit = defaultQueryLimit
	}

	entries, err := h.log.ListByCharacter(ctx, cmd.CharacterID, cmd.AfterSequence, limit)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		out = append(out, map[string]interface{}{
			"sequence":   entry.Sequence,
			"event_name": entry.Name,
			"payload":    entry.Payload,
			"summary":    entry.Summary,
			"timestamp":  entry.Timestamp,
		})
	}
	return &EventQueryResponse{Events: out}, nil
}
