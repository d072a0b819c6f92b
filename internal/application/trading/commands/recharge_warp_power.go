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

// RechargeWarpPowerCommand buys warp power at the banking sector. Units 0
// means "fill to capacity".
type RechargeWarpPowerCommand struct {
	CharacterID string `json:"character_id"`
	Units       int    `json:"units"`
}

// RechargeWarpPowerResponse reports the purchase
type RechargeWarpPowerResponse struct {
	Units     int
	TotalCost int
	WarpPower int
}

// RechargeWarpPowerHandler sells warp power for credits on hand
type RechargeWarpPowerHandler struct {
	rules      common.Rules
	bus        *appevents.Bus
	locks      *locks.Manager
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
}

// NewRechargeWarpPowerHandler creates a new recharge handler
func NewRechargeWarpPowerHandler(
	rules common.Rules,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
) *RechargeWarpPowerHandler {
	return &RechargeWarpPowerHandler{
		rules:      rules,
		bus:        bus,
		locks:      lockManager,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
	}
}

// Handle executes the recharge_warp_power command
func (h *RechargeWarpPowerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RechargeWarpPowerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Units < 0 {
		return nil, shared.NewTypeError("units", "must be non-negative")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.SectorID != h.rules.BankingSectorID {
		return nil, shared.NewConflictError("warp power is only sold in sector " + strconv.Itoa(h.rules.BankingSectorID))
	}

	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	units := cmd.Units
	missing := shipType.WarpPowerCapacity - ship.WarpPower
	if units == 0 || units > missing {
		units = missing
	}
	if units <= 0 {
		return nil, shared.NewValidationError("units", "warp power already at capacity")
	}
	totalCost := units * h.rules.WarpPowerPrice

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if err := character.Debit(totalCost); err != nil {
		return nil, err
	}
	ship.WarpPower += units
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
		Name: events.WarpPurchase,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"units":        units,
			"total_cost":   totalCost,
			"warp_power":   ship.WarpPower,
			"credits":      events.CreditsPayload(character),
		},
		Filter: events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.WarpPurchase,
			"error": err.Error(),
		})
	}

	return &RechargeWarpPowerResponse{Units: units, TotalCost: totalCost, WarpPower: ship.WarpPower}, nil
}
