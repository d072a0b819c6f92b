package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

// DumpCargoCommand ejects cargo into a salvage container in the current
// sector. With no commodity given the whole hold is dumped.
type DumpCargoCommand struct {
	CharacterID string `json:"character_id"`
	Commodity   string `json:"commodity,omitempty"`
	Units       int    `json:"units,omitempty"`
}

// DumpCargoResponse reports the created container
type DumpCargoResponse struct {
	SalvageID string
	Dumped    map[string]interface{}
}

// DumpCargoHandler ejects hold contents as sector salvage. The container
// names the source hull, never the character.
type DumpCargoHandler struct {
	rules      common.Rules
	clock      shared.Clock
	bus        *appevents.Bus
	index      *sector.Index
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	salvage    world.SalvageRepository
}

// NewDumpCargoHandler creates a new dump cargo handler
func NewDumpCargoHandler(
	rules common.Rules,
	clock shared.Clock,
	bus *appevents.Bus,
	index *sector.Index,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	salvage world.SalvageRepository,
) *DumpCargoHandler {
	return &DumpCargoHandler{
		rules:      rules,
		clock:      clock,
		bus:        bus,
		index:      index,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		salvage:    salvage,
	}
}

// Handle executes the dump_cargo command
func (h *DumpCargoHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DumpCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
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

	dumped := shared.Cargo{}
	if cmd.Commodity == "" {
		if ship.Cargo.IsEmpty() {
			return nil, shared.NewValidationError("cargo", "hold is empty")
		}
		dumped = ship.Cargo.Clone()
		ship.Cargo = shared.Cargo{}
	} else {
		commodity, err := shared.ParseCommodity(cmd.Commodity)
		if err != nil {
			return nil, err
		}
		if cmd.Units <= 0 {
			return nil, shared.NewTypeError("units", "must be a positive integer")
		}
		if ship.Cargo[commodity] < cmd.Units {
			return nil, shared.NewValidationError("units", "hold does not carry that many units")
		}
		dumped[commodity] = cmd.Units
		ship.Cargo[commodity] -= cmd.Units
		if ship.Cargo[commodity] == 0 {
			delete(ship.Cargo, commodity)
		}
	}
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	container := &world.Salvage{
		ID:             utils.GenerateSalvageID(character.SectorID),
		SectorID:       character.SectorID,
		Cargo:          dumped,
		ExpiresAt:      h.clock.Now().Add(h.rules.SalvageTTL),
		SourceShipName: ship.Name,
		SourceShipType: ship.TypeName,
	}

	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if err := h.salvage.Save(ctx, container); err != nil {
		return nil, err
	}
	h.index.AddSalvage(container.SectorID, container.ID)

	if err := h.bus.Emit(ctx, events.Event{
		Name:    events.SalvageCreated,
		Payload: events.SalvagePayload(container),
		Summary: ship.Name + " jettisoned cargo",
		Filter:  events.ToSector(character.SectorID, ""),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.SalvageCreated,
			"error": err.Error(),
		})
	}

	return &DumpCargoResponse{
		SalvageID: container.ID,
		Dumped:    events.CargoPayload(dumped),
	}, nil
}
