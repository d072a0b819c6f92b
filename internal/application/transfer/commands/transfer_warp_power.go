package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// TransferWarpPowerCommand pumps warp power into another character's ship
// in the same sector
type TransferWarpPowerCommand struct {
	CharacterID   string `json:"character_id"`
	ToCharacterID string `json:"to_character_id"`
	Amount        int    `json:"amount"`
}

// TransferWarpPowerResponse reports the donor's remaining warp power
type TransferWarpPowerResponse struct {
	Amount    int
	WarpPower int
}

// TransferWarpPowerHandler moves warp power between two ships. The
// recipient's capacity caps the transferred amount.
type TransferWarpPowerHandler struct {
	bus        *appevents.Bus
	catalog    world.ShipCatalog
	characters world.CharacterRepository
	ships      world.ShipRepository
}

// NewTransferWarpPowerHandler creates a new warp transfer handler
func NewTransferWarpPowerHandler(
	bus *appevents.Bus,
	catalog world.ShipCatalog,
	characters world.CharacterRepository,
	ships world.ShipRepository,
) *TransferWarpPowerHandler {
	return &TransferWarpPowerHandler{bus: bus, catalog: catalog, characters: characters, ships: ships}
}

// Handle executes the transfer_warp_power command
func (h *TransferWarpPowerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TransferWarpPowerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Amount <= 0 {
		return nil, shared.NewTypeError("amount", "must be a positive integer")
	}
	if cmd.ToCharacterID == cmd.CharacterID {
		return nil, shared.NewValidationError("to_character_id", "cannot transfer to yourself")
	}

	from, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	to, err := h.characters.FindByID(ctx, cmd.ToCharacterID)
	if err != nil {
		return nil, err
	}
	if from.SectorID != to.SectorID || to.InHyperspace {
		return nil, shared.NewConflictError("recipient is not in your sector")
	}

	fromShip, err := h.ships.FindByID(ctx, from.ShipID)
	if err != nil {
		return nil, err
	}
	toShip, err := h.ships.FindByID(ctx, to.ShipID)
	if err != nil {
		return nil, err
	}
	fromType, err := h.catalog.Type(fromShip.TypeName)
	if err != nil {
		return nil, err
	}
	toType, err := h.catalog.Type(toShip.TypeName)
	if err != nil {
		return nil, err
	}

	if fromShip.WarpPower < cmd.Amount {
		return nil, shared.NewValidationError("amount", "insufficient warp power")
	}
	room := toType.WarpPowerCapacity - toShip.WarpPower
	if room < cmd.Amount {
		return nil, shared.NewValidationError("amount", "recipient cannot hold that much warp power")
	}

	fromShip.WarpPower -= cmd.Amount
	toShip.WarpPower += cmd.Amount
	if err := fromShip.CheckBounds(fromType); err != nil {
		return nil, err
	}
	if err := toShip.CheckBounds(toType); err != nil {
		return nil, err
	}

	if err := h.ships.Save(ctx, fromShip); err != nil {
		return nil, err
	}
	if err := h.ships.Save(ctx, toShip); err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.WarpTransfer,
		Payload: map[string]interface{}{
			"from_character_id": from.ID,
			"to_character_id":   to.ID,
			"amount":            cmd.Amount,
		},
		Filter: events.ToCharacters(from.ID, to.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.WarpTransfer,
			"error": err.Error(),
		})
	}

	return &TransferWarpPowerResponse{Amount: cmd.Amount, WarpPower: fromShip.WarpPower}, nil
}
