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

// TradeCommand buys from or sells to the port in the character's sector
type TradeCommand struct {
	CharacterID string `json:"character_id"`
	Commodity   string `json:"commodity"`
	Units       int    `json:"units"`
	Kind        string `json:"kind"`
}

// TradeResponse reports the executed trade
type TradeResponse struct {
	Commodity  string
	Units      int
	UnitPrice  int
	TotalPrice int
	Credits    int
}

// TradeHandler executes port trades under the port and credit locks.
// Pricing is computed from pre-trade stock per the stock curve.
type TradeHandler struct {
	bus        *appevents.Bus
	locks      *locks.Manager
	priceFn    world.PriceFunc
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	ports      world.PortRepository
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(
	bus *appevents.Bus,
	lockManager *locks.Manager,
	priceFn world.PriceFunc,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	ports world.PortRepository,
) *TradeHandler {
	return &TradeHandler{
		bus:        bus,
		locks:      lockManager,
		priceFn:    priceFn,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		ports:      ports,
	}
}

// Handle executes the trade command
func (h *TradeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	commodity, err := shared.ParseCommodity(cmd.Commodity)
	if err != nil {
		return nil, err
	}
	kind, err := world.ParseTradeKind(cmd.Kind)
	if err != nil {
		return nil, err
	}
	if cmd.Units <= 0 {
		return nil, shared.NewTypeError("units", "must be a positive integer")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}

	guard, err := h.locks.AcquireKeys(ctx,
		locks.PortKey(character.SectorID),
		locks.CreditKey(character.ID),
	)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	port, err := h.ports.FindBySector(ctx, character.SectorID)
	if err != nil {
		return nil, err
	}
	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	unitPrice := h.priceFn(port.Stock[commodity], port.MaxCapacity[commodity])
	totalPrice := unitPrice * cmd.Units

	switch kind {
	case world.TradeBuy:
		if !port.Sells(commodity) {
			return nil, shared.NewValidationError("commodity", "port does not sell "+string(commodity))
		}
		if port.Stock[commodity] < cmd.Units {
			return nil, shared.NewValidationError("units",
				"port has only "+strconv.Itoa(port.Stock[commodity])+" units in stock")
		}
		if ship.FreeCargoSpace(shipType) < cmd.Units {
			return nil, shared.NewValidationError("units", "insufficient cargo space")
		}
		if err := character.Debit(totalPrice); err != nil {
			return nil, err
		}
		port.Stock[commodity] -= cmd.Units
		if ship.Cargo == nil {
			ship.Cargo = shared.Cargo{}
		}
		ship.Cargo[commodity] += cmd.Units

	case world.TradeSell:
		if !port.Buys(commodity) {
			return nil, shared.NewValidationError("commodity", "port does not buy "+string(commodity))
		}
		if ship.Cargo[commodity] < cmd.Units {
			return nil, shared.NewValidationError("units",
				"hold has only "+strconv.Itoa(ship.Cargo[commodity])+" units")
		}
		if port.Stock[commodity]+cmd.Units > port.MaxCapacity[commodity] {
			return nil, shared.NewValidationError("units", "port cannot absorb that many units")
		}
		port.Stock[commodity] += cmd.Units
		ship.Cargo[commodity] -= cmd.Units
		if ship.Cargo[commodity] == 0 {
			delete(ship.Cargo, commodity)
		}
		if err := character.Credit(totalPrice); err != nil {
			return nil, err
		}
	}

	if err := port.CheckBounds(); err != nil {
		return nil, err
	}
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	if err := h.ports.Save(ctx, port); err != nil {
		return nil, err
	}
	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	h.emit(ctx, events.Event{
		Name: events.TradeExecuted,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"commodity":    string(commodity),
			"units":        cmd.Units,
			"kind":         string(kind),
			"unit_price":   unitPrice,
			"total_price":  totalPrice,
			"credits":      events.CreditsPayload(character),
			"cargo":        events.CargoPayload(ship.Cargo),
		},
		Summary: character.Name + " traded " + strconv.Itoa(cmd.Units) + " " + string(commodity),
		Filter:  events.ToCharacters(character.ID),
	})
	h.emit(ctx, events.Event{
		Name:    events.PortUpdate,
		Payload: events.PortPayload(port),
		Filter:  events.ToSector(character.SectorID, ""),
	})

	return &TradeResponse{
		Commodity:  string(commodity),
		Units:      cmd.Units,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		Credits:    character.CreditsOnHand,
	}, nil
}

func (h *TradeHandler) emit(ctx context.Context, evt events.Event) {
	if err := h.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}
