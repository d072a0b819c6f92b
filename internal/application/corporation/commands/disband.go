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

// CorporationDisbandCommand dissolves the corporation outright
type CorporationDisbandCommand struct {
	CharacterID string `json:"character_id"`
}

// CorporationDisbandResponse reports the dissolution
type CorporationDisbandResponse struct {
	CorporationID string
	MembersFreed  int
}

// CorporationDisbandHandler lets the founder dissolve the corporation.
// Every member is released and corporation ships become unowned.
type CorporationDisbandHandler struct {
	bus          *appevents.Bus
	roster       *appevents.Roster
	characters   world.CharacterRepository
	ships        world.ShipRepository
	corporations world.CorporationRepository
}

// NewCorporationDisbandHandler creates a new corporation disband handler
func NewCorporationDisbandHandler(
	bus *appevents.Bus,
	roster *appevents.Roster,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	corporations world.CorporationRepository,
) *CorporationDisbandHandler {
	return &CorporationDisbandHandler{bus: bus, roster: roster, characters: characters, ships: ships, corporations: corporations}
}

// Handle executes the corporation_disband command
func (h *CorporationDisbandHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationDisbandCommand)
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
		return nil, shared.NewAuthorizationError("only the founder can disband the corporation")
	}

	if err := abandonShips(ctx, h.ships, h.bus, corp); err != nil {
		return nil, err
	}

	members := append([]string(nil), corp.Members...)
	for _, memberID := range members {
		member, err := h.characters.FindByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		member.CorporationID = ""
		if err := h.characters.Save(ctx, member); err != nil {
			return nil, err
		}
	}
	if err := h.corporations.Delete(ctx, corp.ID); err != nil {
		return nil, err
	}

	// Emit while the roster still routes to every released member.
	emitCorporationEvent(ctx, h.bus, events.Event{
		Name: events.CorporationDisbanded,
		Payload: map[string]interface{}{
			"corp_id": corp.ID,
			"name":    corp.Name,
			"reason":  "disbanded_by_founder",
		},
		Summary: corp.Name + " disbanded",
		Filter:  events.ToCorporation(corp.ID),
	})
	h.roster.DropCorporation(corp.ID)

	return &CorporationDisbandResponse{CorporationID: corp.ID, MembersFreed: len(members)}, nil
}
