package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// CorporationCreateCommand founds a new corporation
type CorporationCreateCommand struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
}

// CorporationCreateResponse reports the new corporation
type CorporationCreateResponse struct {
	CorporationID string
	InviteCode    string
}

// CorporationCreateHandler charges the creation cost and registers the
// founder as the first member
type CorporationCreateHandler struct {
	rules        common.Rules
	clock        shared.Clock
	bus          *appevents.Bus
	locks        *locks.Manager
	roster       *appevents.Roster
	characters   world.CharacterRepository
	corporations world.CorporationRepository
}

// NewCorporationCreateHandler creates a new corporation create handler
func NewCorporationCreateHandler(
	rules common.Rules,
	clock shared.Clock,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	roster *appevents.Roster,
	characters world.CharacterRepository,
	corporations world.CorporationRepository,
) *CorporationCreateHandler {
	return &CorporationCreateHandler{
		rules:        rules,
		clock:        clock,
		bus:          bus,
		locks:        lockManager,
		roster:       roster,
		characters:   characters,
		corporations: corporations,
	}
}

// Handle executes the corporation_create command
func (h *CorporationCreateHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationCreateCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.CorporationID != "" {
		return nil, shared.NewConflictError("already a member of a corporation")
	}

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if err := character.Debit(h.rules.CorporationCreationCost); err != nil {
		return nil, err
	}

	corp := &world.Corporation{
		ID:         utils.GenerateCorporationID(),
		Name:       cmd.Name,
		InviteCode: utils.GenerateInviteCode(),
		FoundedAt:  h.clock.Now(),
		FounderID:  character.ID,
		Members:    []string{character.ID},
		Ships:      []string{},
	}
	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}
	character.CorporationID = corp.ID
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}
	h.roster.SetMembership(corp.ID, character.ID)

	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.CorporationCreated,
		Payload: events.CorporationPayload(corp, true),
		Summary: character.Name + " founded " + corp.Name,
		Filter:  events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.CorporationCreated,
			"error": err.Error(),
		})
	}

	return &CorporationCreateResponse{CorporationID: corp.ID, InviteCode: corp.InviteCode}, nil
}
