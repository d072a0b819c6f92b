package commands

import (
	"context"
	"fmt"

	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
)

// CombatActionCommand submits one round order for the character
type CombatActionCommand struct {
	CharacterID       string `json:"character_id"`
	CombatID          string `json:"combat_id"`
	Round             int    `json:"round"`
	Action            string `json:"action"`
	Commit            int    `json:"commit,omitempty"`
	TargetID          string `json:"target_id,omitempty"`
	DestinationSector int    `json:"destination_sector,omitempty"`
}

// CombatActionResponse acknowledges the stored order
type CombatActionResponse struct {
	CombatID string
	Round    int
	Action   string
}

// CombatActionHandler parses and forwards round orders to the combat
// manager, which validates against the live encounter.
type CombatActionHandler struct {
	combat *appcombat.Manager
}

// NewCombatActionHandler creates a new combat action handler
func NewCombatActionHandler(combatManager *appcombat.Manager) *CombatActionHandler {
	return &CombatActionHandler{combat: combatManager}
}

// Handle executes the combat_action command
func (h *CombatActionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CombatActionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	kind, err := combat.ParseActionKind(cmd.Action)
	if err != nil {
		return nil, err
	}
	action := combat.Action{
		Kind:              kind,
		Commit:            cmd.Commit,
		TargetID:          cmd.TargetID,
		DestinationSector: cmd.DestinationSector,
	}

	if err := h.combat.SubmitAction(ctx, cmd.CombatID, cmd.CharacterID, action, cmd.Round); err != nil {
		return nil, err
	}

	return &CombatActionResponse{
		CombatID: cmd.CombatID,
		Round:    cmd.Round,
		Action:   string(kind),
	}, nil
}
