package commands

import (
	"context"
	"fmt"

	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// TestResetCommand wipes all mutable world state
type TestResetCommand struct {
	CharacterID string `json:"character_id,omitempty"`
}

// TestResetResponse acknowledges the wipe
type TestResetResponse struct {
	Reset bool
}

// TestResetHandler restores the world to its initial state for test
// harnesses. Disabled unless the test feature flag is set; live
// deployments reject it outright.
type TestResetHandler struct {
	rules     common.Rules
	scheduler *appcombat.Scheduler
	manager   *appcombat.Manager
	hub       *appevents.Hub
	index     *sector.Index
	roster    *appevents.Roster
	resetter  world.Resetter
	log       events.Log
}

// NewTestResetHandler creates a new test reset handler
func NewTestResetHandler(
	rules common.Rules,
	scheduler *appcombat.Scheduler,
	manager *appcombat.Manager,
	hub *appevents.Hub,
	index *sector.Index,
	roster *appevents.Roster,
	resetter world.Resetter,
	log events.Log,
) *TestResetHandler {
	return &TestResetHandler{
		rules:     rules,
		scheduler: scheduler,
		manager:   manager,
		hub:       hub,
		index:     index,
		roster:    roster,
		resetter:  resetter,
		log:       log,
	}
}

// Handle executes the test_reset command
func (h *TestResetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*TestResetCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if !h.rules.EnableTestCommands {
		return nil, shared.NewAuthorizationError("test commands are disabled")
	}

	// Quiesce the background sweeper so no round resolves mid-wipe.
	h.scheduler.Stop()
	defer h.scheduler.Restart()

	h.hub.Drain()
	h.manager.Reset()
	h.index.Reset()
	h.roster.Reset()

	if err := h.resetter.Reset(ctx); err != nil {
		return nil, err
	}
	if err := h.log.Reset(ctx); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "world state reset", nil)
	return &TestResetResponse{Reset: true}, nil
}
