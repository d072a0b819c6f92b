package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// CollectFightersCommand recovers stationed fighters and claims the
// accumulated toll balance
type CollectFightersCommand struct {
	CharacterID string `json:"character_id"`
}

// CollectFightersResponse reports what was recovered
type CollectFightersResponse struct {
	FightersCollected int
	FightersRemaining int
	TollClaimed       int
	ShipFighters      int
}

// CollectFightersHandler takes fighters back aboard, bounded by hull
// capacity. The toll balance is claimed in full on any collection; the
// garrison is deleted once empty.
type CollectFightersHandler struct {
	bus        *appevents.Bus
	locks      *locks.Manager
	index      *sector.Index
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
	garrisons  world.GarrisonRepository
}

// NewCollectFightersHandler creates a new garrison collection handler
func NewCollectFightersHandler(
	bus *appevents.Bus,
	lockManager *locks.Manager,
	index *sector.Index,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	garrisons world.GarrisonRepository,
) *CollectFightersHandler {
	return &CollectFightersHandler{
		bus:        bus,
		locks:      lockManager,
		index:      index,
		catalog:    catalog,
		characters: characters,
		ships:      ships,
		garrisons:  garrisons,
	}
}

// Handle executes the combat_collect_fighters command
func (h *CollectFightersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CollectFightersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	garrison, err := h.garrisons.FindBySector(ctx, character.SectorID)
	if err != nil {
		return nil, err
	}
	if garrison.OwnerID != character.ID {
		return nil, shared.NewAuthorizationError("garrison belongs to another character")
	}

	ship, err := h.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := h.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}

	room := shipType.MaxFighters - ship.Fighters
	collected := garrison.Fighters
	if collected > room {
		collected = room
	}
	if collected <= 0 && garrison.TollBalance == 0 {
		return nil, shared.NewValidationError("fighters", "no room aboard for stationed fighters")
	}

	tollClaimed := garrison.TollBalance
	ship.Fighters += collected
	garrison.Fighters -= collected
	garrison.TollBalance = 0
	if err := ship.CheckBounds(shipType); err != nil {
		return nil, err
	}

	if tollClaimed > 0 {
		guard, err := h.locks.Acquire(ctx, locks.CreditKey(character.ID))
		if err != nil {
			return nil, err
		}
		defer guard.Release()
		if err := character.Credit(tollClaimed); err != nil {
			return nil, err
		}
		if err := h.characters.Save(ctx, character); err != nil {
			return nil, err
		}
	}

	if err := h.ships.Save(ctx, ship); err != nil {
		return nil, err
	}
	if garrison.Fighters <= 0 {
		if err := h.garrisons.Delete(ctx, garrison.SectorID); err != nil {
			return nil, err
		}
		h.index.ClearGarrison(garrison.SectorID)
	} else {
		if err := h.garrisons.Save(ctx, garrison); err != nil {
			return nil, err
		}
		h.index.SetGarrison(garrison)
	}

	h.emit(ctx, events.Event{
		Name: events.GarrisonCollected,
		Payload: map[string]interface{}{
			"sector_id":          garrison.SectorID,
			"owner_id":           character.ID,
			"fighters_collected": collected,
			"fighters_remaining": garrison.Fighters,
		},
		Summary: character.Name + " collected " + strconv.Itoa(collected) + " fighters",
		Filter:  events.ToSector(character.SectorID, ""),
	})
	h.emit(ctx, events.Event{
		Name: events.StatusUpdate,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"credits":      events.CreditsPayload(character),
			"toll_claimed": tollClaimed,
		},
		Filter: events.ToCharacters(character.ID),
	})

	return &CollectFightersResponse{
		FightersCollected: collected,
		FightersRemaining: garrison.Fighters,
		TollClaimed:       tollClaimed,
		ShipFighters:      ship.Fighters,
	}, nil
}

func (h *CollectFightersHandler) emit(ctx context.Context, evt events.Event) {
	if err := h.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}
