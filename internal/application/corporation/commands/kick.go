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

// CorporationKickCommand expels a member
type CorporationKickCommand struct {
	CharacterID string `json:"character_id"`
	MemberID    string `json:"member_id"`
}

// CorporationKickResponse reports the expulsion
type CorporationKickResponse struct {
	CorporationID string
	MemberID      string
}

// CorporationKickHandler lets the founder expel another member
type CorporationKickHandler struct {
	bus          *appevents.Bus
	roster       *appevents.Roster
	characters   world.CharacterRepository
	corporations world.CorporationRepository
}

// NewCorporationKickHandler creates a new corporation kick handler
func NewCorporationKickHandler(
	bus *appevents.Bus,
	roster *appevents.Roster,
	characters world.CharacterRepository,
	corporations world.CorporationRepository,
) *CorporationKickHandler {
	return &CorporationKickHandler{bus: bus, roster: roster, characters: characters, corporations: corporations}
}

// Handle executes the corporation_kick command
func (h *CorporationKickHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationKickCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.MemberID == cmd.CharacterID {
		return nil, shared.NewValidationError("member_id", "cannot kick yourself; use corporation_leave")
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
		return nil, shared.NewAuthorizationError("only the founder can kick members")
	}
	if !corp.IsMember(cmd.MemberID) {
		return nil, shared.NewNotFoundError("member", cmd.MemberID)
	}

	member, err := h.characters.FindByID(ctx, cmd.MemberID)
	if err != nil {
		return nil, err
	}
	corp.RemoveMember(member.ID)
	member.CorporationID = ""
	if err := h.characters.Save(ctx, member); err != nil {
		return nil, err
	}
	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}

	// Emit while the roster still routes to the kicked member.
	emitCorporationEvent(ctx, h.bus, events.Event{
		Name: events.CorporationMemberKicked,
		Payload: map[string]interface{}{
			"corp_id":      corp.ID,
			"character_id": member.ID,
			"name":         member.Name,
			"kicked_by":    actor.ID,
			"members":      corp.Members,
		},
		Summary: member.Name + " was expelled from " + corp.Name,
		Filter:  events.ToCorporation(corp.ID),
	})
	h.roster.ClearMembership(corp.ID, member.ID)

	return &CorporationKickResponse{CorporationID: corp.ID, MemberID: member.ID}, nil
}
