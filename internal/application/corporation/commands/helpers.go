package commands

import (
	"context"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// emitCorporationEvent publishes an event and logs the failure instead of
// surfacing it; the state change already committed.
func emitCorporationEvent(ctx context.Context, bus *appevents.Bus, event events.Event) {
	if err := bus.Emit(ctx, event); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": event.Name,
			"error": err.Error(),
		})
	}
}

// abandonShips strips ownership from every corporation hull. The ships
// stay where they are and anyone may claim them later.
func abandonShips(ctx context.Context, ships world.ShipRepository, bus *appevents.Bus, corp *world.Corporation) error {
	if len(corp.Ships) == 0 {
		return nil
	}
	abandoned := make([]map[string]interface{}, 0, len(corp.Ships))
	for _, shipID := range corp.Ships {
		ship, err := ships.FindByID(ctx, shipID)
		if err != nil {
			return err
		}
		ship.OwnerKind = world.ShipOwnerUnowned
		ship.OwnerID = ""
		if err := ships.Save(ctx, ship); err != nil {
			return err
		}
		abandoned = append(abandoned, map[string]interface{}{
			"ship_id": ship.ID,
			"name":    ship.Name,
			"type":    ship.TypeName,
		})
	}
	emitCorporationEvent(ctx, bus, events.Event{
		Name: events.CorporationShipsAbandoned,
		Payload: map[string]interface{}{
			"corp_id": corp.ID,
			"ships":   abandoned,
		},
		Summary: corp.Name + " ships abandoned",
		Filter:  events.ToCorporation(corp.ID),
	})
	return nil
}
