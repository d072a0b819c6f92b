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
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// ShipPurchaseCommand trades the current hull in for a new one at the
// banking sector. The old ship is marked unowned, never deleted, and
// keeps its name.
type ShipPurchaseCommand struct {
	CharacterID string `json:"character_id"`
	ShipType    string `json:"ship_type"`
	ShipName    string `json:"ship_name,omitempty"`
}

// ShipPurchaseResponse reports the hull swap
type ShipPurchaseResponse struct {
	ShipID      string
	ShipType    string
	NetCost     int
	TradeIn     int
	OldShipID   string
	OldShipName string
}

// ShipPurchaseHandler swaps a character onto a freshly bought hull,
// carrying cargo over and crediting the trade-in value of the old one.
type ShipPurchaseHandler struct {
	rules      common.Rules
	bus        *appevents.Bus
	locks      *locks.Manager
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
}

// NewShipPurchaseHandler creates a new ship purchase handler
func NewShipPurchaseHandler(
	rules common.Rules,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
) *ShipPurchaseHandler {
	return &ShipPurchaseHandler{
		rules:      rules,
		bus:        bus,
		locks:      lockManager,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
	}
}

// Handle executes the ship_purchase command
func (h *ShipPurchaseHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ShipPurchaseCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	newType, err := h.catalog.Type(cmd.ShipType)
	if err != nil {
		return nil, err
	}
	if newType.Name == world.EscapePodType {
		return nil, shared.NewValidationError("ship_type", "escape pods are not for sale")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.SectorID != h.rules.BankingSectorID {
		return nil, shared.NewConflictError("ships are only sold in sector " + strconv.Itoa(h.rules.BankingSectorID))
	}

	oldShip, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	oldType, err := h.catalog.Type(oldShip.TypeName)
	if err != nil {
		return nil, err
	}
	if oldShip.Cargo.Total() > newType.CargoCapacity {
		return nil, shared.NewValidationError("ship_type", "current cargo does not fit the new hold")
	}

	netCost := newType.Price - oldType.TradeInValue
	if netCost < 0 {
		netCost = 0
	}

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if err := character.Debit(netCost); err != nil {
		return nil, err
	}

	name := cmd.ShipName
	if name == "" {
		name = character.Name + "'s " + newType.Name
	}
	newShip := &world.Ship{
		ID:        utils.GenerateShipID(),
		Name:      name,
		TypeName:  newType.Name,
		OwnerKind: world.ShipOwnerCharacter,
		OwnerID:   character.ID,
		WarpPower: newType.WarpPowerCapacity,
		Cargo:     oldShip.Cargo.Clone(),
	}
	if err := newShip.CheckBounds(newType); err != nil {
		return nil, err
	}

	oldShipID, oldShipName := oldShip.ID, oldShip.Name
	oldShip.OwnerKind = world.ShipOwnerUnowned
	oldShip.OwnerID = ""
	oldShip.Cargo = shared.Cargo{}
	oldShip.Fighters = 0
	oldShip.Shields = 0

	if err := h.ships.Save(ctx, newShip); err != nil {
		return nil, err
	}
	if err := h.ships.Save(ctx, oldShip); err != nil {
		return nil, err
	}
	character.ShipID = newShip.ID
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.ShipTradedIn,
		Payload: map[string]interface{}{
			"character_id":  character.ID,
			"ship":          events.ShipPayload(newShip, newType),
			"old_ship_id":   oldShipID,
			"old_ship_name": oldShipName,
			"trade_in":      oldType.TradeInValue,
			"net_cost":      netCost,
			"credits":       events.CreditsPayload(character),
		},
		Summary: character.Name + " bought a " + newType.Name,
		Filter:  events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.ShipTradedIn,
			"error": err.Error(),
		})
	}

	return &ShipPurchaseResponse{
		ShipID:      newShip.ID,
		ShipType:    newType.Name,
		NetCost:     netCost,
		TradeIn:     oldType.TradeInValue,
		OldShipID:   oldShipID,
		OldShipName: oldShipName,
	}, nil
}
