package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// PurchaseFightersCommand buys fighters at the banking sector
type PurchaseFightersCommand struct {
	CharacterID string `json:"character_id"`
	Units       int    `json:"units"`
}

// PurchaseFightersResponse reports the purchase
type PurchaseFightersResponse struct {
	Units     int
	TotalCost int
	Fighters  int
}

// PurchaseFightersHandler sells fighters for credits on hand
type PurchaseFightersHandler struct {
	rules      common.Rules
	bus        *appevents.Bus
	locks      *locks.Manager
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
}

// NewPurchaseFightersHandler creates a new fighter purchase handler
func NewPurchaseFightersHandler(
	rules common.Rules,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
) *PurchaseFightersHandler {
	return &PurchaseFightersHandler{
		rules:      rules,
		bus:        bus,
		locks:      lockManager,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
	}
}

// Handle executes the purchase_fighters command
func (h *PurchaseFightersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PurchaseFightersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Units <= 0 {
		return nil, shared.NewTypeError("units", "must be a positive integer")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.SectorID != h.rules.BankingSectorID {
		return nil, shared.NewConflictError("fighters are only sold in sector " + strconv.Itoa(h.rules.BankingSectorID))
	}

	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}
	if ship.Fighters+cmd.Units > shipType.MaxFighters {
		return nil, shared.NewValidationError("units",
			"hull holds at most "+strconv.Itoa(shipType.MaxFighters)+" fighters")
	}
	totalCost := cmd.Units * h.rules.FighterPrice

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if err := character.Debit(totalCost); err != nil {
		return nil, err
	}
	ship.Fighters += cmd.Units
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.FighterPurchase,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"units":        cmd.Units,
			"total_cost":   totalCost,
			"fighters":     ship.Fighters,
			"credits":      events.CreditsPayload(character),
		},
		Filter: events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.FighterPurchase,
			"error": err.Error(),
		})
	}

	return &PurchaseFightersResponse{Units: cmd.Units, TotalCost: totalCost, Fighters: ship.Fighters}, nil
}
