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

// CorporationJoinCommand joins a corporation by invite code
type CorporationJoinCommand struct {
	CharacterID string `json:"character_id"`
	InviteCode  string `json:"invite_code"`
}

// CorporationJoinResponse reports the joined corporation
type CorporationJoinResponse struct {
	CorporationID string
	Name          string
}

// CorporationJoinHandler adds a character to an existing corporation
type CorporationJoinHandler struct {
	bus          *appevents.Bus
	roster       *appevents.Roster
	characters   world.CharacterRepository
	corporations world.CorporationRepository
}

// NewCorporationJoinHandler creates a new corporation join handler
func NewCorporationJoinHandler(
	bus *appevents.Bus,
	roster *appevents.Roster,
	characters world.CharacterRepository,
	corporations world.CorporationRepository,
) *CorporationJoinHandler {
	return &CorporationJoinHandler{bus: bus, roster: roster, characters: characters, corporations: corporations}
}

// Handle executes the corporation_join command
func (h *CorporationJoinHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationJoinCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.InviteCode == "" {
		return nil, shared.NewValidationError("invite_code", "must not be empty")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.CorporationID != "" {
		return nil, shared.NewConflictError("already a member of a corporation")
	}

	corp, err := h.corporations.FindByInviteCode(ctx, cmd.InviteCode)
	if err != nil {
		return nil, err
	}

	corp.Members = append(corp.Members, character.ID)
	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}
	character.CorporationID = corp.ID
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}
	h.roster.SetMembership(corp.ID, character.ID)

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.CorporationMemberJoined,
		Payload: map[string]interface{}{
			"corp_id":      corp.ID,
			"character_id": character.ID,
			"name":         character.Name,
			"members":      corp.Members,
		},
		Summary: character.Name + " joined " + corp.Name,
		Filter:  events.ToCorporation(corp.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.CorporationMemberJoined,
			"error": err.Error(),
		})
	}

	return &CorporationJoinResponse{CorporationID: corp.ID, Name: corp.Name}, nil
}
