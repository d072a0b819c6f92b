package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// SalvageCollectCommand scoops a salvage container in the current sector
type SalvageCollectCommand struct {
	CharacterID string `json:"character_id"`
	SalvageID   string `json:"salvage_id"`
}

// SalvageCollectResponse reports what was recovered
type SalvageCollectResponse struct {
	CargoCollected map[string]interface{}
	Credits        int
	Scrap          int
	Remaining      map[string]interface{}
}

// SalvageCollectHandler transfers container contents to the collector.
// Cargo moves up to free hold space; credits and scrap value go to the
// character's hand. An emptied container is deleted.
type SalvageCollectHandler struct {
	bus        *appevents.Bus
	locks      *locks.Manager
	index      *sector.Index
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	salvage    world.SalvageRepository
}

// NewSalvageCollectHandler creates a new salvage collection handler
func NewSalvageCollectHandler(
	bus *appevents.Bus,
	lockManager *locks.Manager,
	index *sector.Index,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	salvage world.SalvageRepository,
) *SalvageCollectHandler {
	return &SalvageCollectHandler{
		bus:        bus,
		locks:      lockManager,
		index:      index,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		salvage:    salvage,
	}
}

// Handle executes the salvage_collect command
func (h *SalvageCollectHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SalvageCollectCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	container, err := h.salvage.FindByID(ctx, cmd.SalvageID)
	if err != nil {
		return nil, err
	}
	if container.SectorID != character.SectorID {
		return nil, shared.NewConflictError("salvage is in another sector")
	}

	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	// Move cargo up to free space, commodity by commodity in canonical
	// order so partial scoops are deterministic.
	collected := shared.Cargo{}
	free := ship.FreeCargoSpace(shipType)
	for _, commodity := range shared.Commodities() {
		units := container.Cargo[commodity]
		if units == 0 || free == 0 {
			continue
		}
		take := units
		if take > free {
			take = free
		}
		collected[commodity] = take
		container.Cargo[commodity] -= take
		if container.Cargo[commodity] == 0 {
			delete(container.Cargo, commodity)
		}
		if ship.Cargo == nil {
			ship.Cargo = shared.Cargo{}
		}
		ship.Cargo[commodity] += take
		free -= take
	}

	creditsFound := container.Credits
	scrapFound := container.Scrap
	container.Credits = 0
	container.Scrap = 0

	if collected.IsEmpty() && creditsFound == 0 && scrapFound == 0 {
		return nil, shared.NewValidationError("salvage_id", "nothing aboard could be collected")
	}

	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	if creditsFound+scrapFound > 0 {
		guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
		if err != nil {
			return nil, err
		}
		defer guard.Release()
		if err := character.Credit(creditsFound + scrapFound); err != nil {
			return nil, err
		}
		if err := h.characters.Save(ctx, character); err != nil {
			return nil, err
		}
	}

	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	emptied := container.Cargo.IsEmpty()
	if emptied {
		if err := h.salvage.Delete(ctx, container.ID); err != nil {
			return nil, err
		}
		h.index.RemoveSalvage(container.SectorID, container.ID)
	} else {
		if err := h.salvage.Save(ctx, container); err != nil {
			return nil, err
		}
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.SalvageCollected,
		Payload: map[string]interface{}{
			"salvage_id":   container.ID,
			"character_id": character.ID,
			"cargo":        events.CargoPayload(collected),
			"credits":      creditsFound,
			"scrap":        scrapFound,
			"emptied":      emptied,
		},
		Summary: character.Name + " collected salvage",
		Filter:  events.ToSector(character.SectorID, ""),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.SalvageCollected,
			"error": err.Error(),
		})
	}

	return &SalvageCollectResponse{
		CargoCollected: events.CargoPayload(collected),
		Credits:        creditsFound,
		Scrap:          scrapFound,
		Remaining:      events.CargoPayload(container.Cargo),
	}, nil
}
