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

// CorporationBuyShipCommand buys a hull into corporate ownership
type CorporationBuyShipCommand struct {
	CharacterID string `json:"character_id"`
	ShipType    string `json:"ship_type"`
	ShipName    string `json:"ship_name,omitempty"`
}

// CorporationBuyShipResponse reports the purchased hull
type CorporationBuyShipResponse struct {
	ShipID        string
	ShipType      string
	Cost          int
	CreditsOnHand int
}

// CorporationBuyShipHandler lets any member buy a ship for the
// corporation at the shipyard. The buyer pays full price from their own
// hand; the hull is titled to the corporation, not the buyer.
type CorporationBuyShipHandler struct {
	rules        common.Rules
	bus          *appevents.Bus
	locks        *locks.Manager
	catalog      world.ShipCatalog
	characters   world.CharacterRepository
	ships        world.ShipRepository
	corporations world.CorporationRepository
}

// NewCorporationBuyShipHandler creates a new corporation ship purchase handler
func NewCorporationBuyShipHandler(
	rules common.Rules,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	corporations world.CorporationRepository,
) *CorporationBuyShipHandler {
	return &CorporationBuyShipHandler{
		rules:        rules,
		bus:          bus,
		locks:        lockManager,
		catalog:      catalog,
		characters:   characters,
		ships:        ships,
		corporations: corporations,
	}
}

// Handle executes the corporation_buy_ship command
func (h *CorporationBuyShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CorporationBuyShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.ShipType == world.EscapePodType {
		return nil, shared.NewValidationError("ship_type", "escape pods are not for sale")
	}

	shipType, err := h.catalog.Type(cmd.ShipType)
	if err != nil {
		return nil, err
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.CorporationID == "" {
		return nil, shared.NewConflictError("not a member of any corporation")
	}
	if character.SectorID != h.rules.BankingSectorID {
		return nil, shared.NewConflictError("ships are only sold at the shipyard sector")
	}
	corp, err := h.corporations.FindByID(ctx, character.CorporationID)
	if err != nil {
		return nil, err
	}

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	if err := character.Debit(shipType.Price); err != nil {
		return nil, err
	}

	name := cmd.ShipName
	if name == "" {
		name = corp.Name + " " + shipType.Name
	}
	ship := &world.Ship{
		ID:        utils.GenerateShipID(),
		Name:      name,
		TypeName:  shipType.Name,
		OwnerKind: world.ShipOwnerCorporation,
		OwnerID:   corp.ID,
		Fighters:  0,
		Shields:   0,
		WarpPower: shipType.WarpPowerCapacity,
		Cargo:     shared.Cargo{},
	}
	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	corp.Ships = append(corp.Ships, ship.ID)
	if err := h.corporations.Save(ctx, corp); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	emitCorporationEvent(ctx, h.bus, events.Event{
		Name: events.CorporationShipPurchased,
		Payload: map[string]interface{}{
			"corp_id":   corp.ID,
			"ship_id":   ship.ID,
			"ship_type": ship.TypeName,
			"name":      ship.Name,
			"bought_by": character.ID,
			"cost":      shipType.Price,
		},
		Summary: character.Name + " bought a " + shipType.Name + " for " + corp.Name,
		Filter:  events.ToCorporation(corp.ID),
	})

	return &CorporationBuyShipResponse{
		ShipID:        ship.ID,
		ShipType:      ship.TypeName,
		Cost:          shipType.Price,
		CreditsOnHand: character.CreditsOnHand,
	}, nil
}
