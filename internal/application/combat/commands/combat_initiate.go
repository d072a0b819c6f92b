package commands

import (
	"context"
	"fmt"

	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// CombatInitiateCommand opens (or merges into) combat in the character's
// current sector
type CombatInitiateCommand struct {
	CharacterID string `json:"character_id"`
}

// CombatInitiateResponse reports the encounter the character is now in
type CombatInitiateResponse struct {
	CombatID string
	SectorID int
	Round    int
}

// CombatInitiateHandler starts a sector encounter through the combat
// manager, capturing the sector's garrison when one stands.
type CombatInitiateHandler struct {
	combat     *appcombat.Manager
	characters world.CharacterRepository
}

// NewCombatInitiateHandler creates a new combat initiate handler
func NewCombatInitiateHandler(combatManager *appcombat.Manager, characters world.CharacterRepository) *CombatInitiateHandler {
	return &CombatInitiateHandler{combat: combatManager, characters: characters}
}

// Handle executes the combat_initiate command
func (h *CombatInitiateHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CombatInitiateCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}

	encounter, err := h.combat.StartEncounter(ctx, character.SectorID, character.ID, "initiate", true)
	if err != nil {
		return nil, err
	}

	return &CombatInitiateResponse{
		CombatID: encounter.ID,
		SectorID: encounter.SectorID,
		Round:    encounter.Round,
	}, nil
}
