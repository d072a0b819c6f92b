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

// CorporationLeaveCommand resigns the character's membership
type CorporationLeaveCommand struct {
	CharacterID string `json:"character_id"`
}

// CorporationLeaveResponse reports the departure
type CorporationLeaveResponse struct {
	CorporationID string
	Disbanded     bool
}

// CorporationLeaveHandler removes the character from their corporation.
// When the last member leaves the corporation dissolves and its ships
// become unowned where they float.
type CorporationLeaveHandler struct {
	bus          *appevents.Bus
	roster       *appevents.Roster
	characters   world.CharacterRepository
	ships        world.ShipRepository
	corporations world.CorporationRepository
}

// NewCorporationLeaveHandler creates a new corporation leave handler
func NewCorporationLeaveHandler(
	bus *appevents.Bus,
	roster *appevents.Roster,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	corporations world.CorporationRepository,
) *CorporationLeaveHandler {
	return &CorporationLeaveHandler{bus: bus, roster: roster, characters: characters, ships: ships, corporations: corporations}
}

// Handle executes the corporation_leave command
func (h *CorporationLeaveHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationLeaveCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.CorporationID == "" {
		return nil, shared.NewConflictError("not a member of any corporation")
	}
	corp, err := h.corporations.FindByID(ctx, character.CorporationID)
	if err != nil {
		return nil, err
	}

	corp.RemoveMember(character.ID)
	character.CorporationID = ""
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	if len(corp.Members) == 0 {
		if err := abandonShips(ctx, h.ships, h.bus, corp); err != nil {
			return nil, err
		}
		if err := h.corporations.Delete(ctx, corp.ID); err != nil {
			return nil, err
		}
		h.roster.ClearMembership(corp.ID, character.ID)
		h.roster.DropCorporation(corp.ID)
		emitCorporationEvent(ctx, h.bus, events.Event{
			Name: events.CorporationDisbanded,
			Payload: map[string]interface{}{
				"corp_id": corp.ID,
				"name":    corp.Name,
				"reason":  "last_member_left",
			},
			Summary: corp.Name + " disbanded",
			Filter:  events.ToCharacters(character.ID),
		})
		return &CorporationLeaveResponse{CorporationID: corp.ID, Disbanded: true}, nil
	}

	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}
	// Emit before the roster forgets the leaver so they see their own
	// departure.
	emitCorporationEvent(ctx, h.bus, events.Event{
		Name: events.CorporationMemberLeft,
		Payload: map[string]interface{}{
			"corp_id":      corp.ID,
			"character_id": character.ID,
			"name":         character.Name,
			"members":      corp.Members,
		},
		Summary: character.Name + " left " + corp.Name,
		Filter:  events.ToCorporation(corp.ID),
	})
	h.roster.ClearMembership(corp.ID, character.ID)

	return &CorporationLeaveResponse{CorporationID: corp.ID, Disbanded: false}, nil
}
