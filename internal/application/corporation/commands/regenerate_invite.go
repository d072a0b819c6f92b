package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// CorporationRegenerateInviteCommand rotates the invite code
type CorporationRegenerateInviteCommand struct {
	CharacterID string `json:"character_id"`
}

// CorporationRegenerateInviteResponse carries the fresh code
type CorporationRegenerateInviteResponse struct {
	CorporationID string
	InviteCode    string
}

// CorporationRegenerateInviteHandler lets the founder invalidate the
// current invite code. The new code goes to the founder only.
type CorporationRegenerateInviteHandler struct {
	bus          *appevents.Bus
	characters   world.CharacterRepository
	corporations world.CorporationRepository
}

// NewCorporationRegenerateInviteHandler creates a new invite rotation handler
func NewCorporationRegenerateInviteHandler(
	bus *appevents.Bus,
	characters world.CharacterRepository,
	corporations world.CorporationRepository,
) *CorporationRegenerateInviteHandler {
	return &CorporationRegenerateInviteHandler{bus: bus, characters: characters, corporations: corporations}
}

// Handle executes the corporation_regenerate_invite command
func (h *CorporationRegenerateInviteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationRegenerateInviteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	actor, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if actor.CorporationID == "" {
		return nil, shared.NewConflictError("not a member of any corporation")
	}
	corp, err := h.corporations.FindByID(ctx, actor.CorporationID)
	if err != nil {
		return nil, err
	}
	if corp.FounderID != actor.ID {
		return nil, shared.NewAuthorizationError("only the founder can rotate the invite code")
	}

	corp.InviteCode = utils.GenerateInviteCode()
	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}

	emitCorporationEvent(ctx, h.bus, events.Event{
		Name: events.CorporationInviteCodeRegenerated,
		Payload: map[string]interface{}{
			"corp_id":     corp.ID,
			"invite_code": corp.InviteCode,
		},
		Summary: corp.Name + " rotated its invite code",
		Filter:  events.ToCharacters(actor.ID),
	})

	return &CorporationRegenerateInviteResponse{CorporationID: corp.ID, InviteCode: corp.InviteCode}, nil
}
