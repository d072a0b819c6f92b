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

// TransferCreditsCommand hands credits to another character in the same
// sector
type TransferCreditsCommand struct {
	CharacterID   string `json:"character_id"`
	ToCharacterID string `json:"to_character_id"`
	Amount        int    `json:"amount"`
}

// TransferCreditsResponse reports both post-transfer balances as the
// sender sees them
type TransferCreditsResponse struct {
	Amount        int
	CreditsOnHand int
}

// TransferCreditsHandler moves credits between two characters. Both credit
// locks are taken as a sorted set so concurrent opposite transfers cannot
// deadlock.
type TransferCreditsHandler struct {
	bus        *appevents.Bus
	locks      *locks.Manager
	characters world.CharacterRepository
}

// NewTransferCreditsHandler creates a new credit transfer handler
func NewTransferCreditsHandler(bus *appevents.Bus, lockManager *locks.Manager, characters world.CharacterRepository) *TransferCreditsHandler {
	return &TransferCreditsHandler{bus: bus, locks: lockManager, characters: characters}
}

// Handle executes the transfer_credits command
func (h *TransferCreditsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TransferCreditsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Amount <= 0 {
		return nil, shared.NewTypeError("amount", "must be a positive integer")
	}
	if cmd.ToCharacterID == cmd.CharacterID {
		return nil, shared.NewValidationError("to_character_id", "cannot transfer to yourself")
	}

	guard, err := h.locks.AcquireKeys(ctx,
		locks.CreditKey(cmd.CharacterID),
		locks.CreditKey(cmd.ToCharacterID),
	)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

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

	if err := from.Debit(cmd.Amount); err != nil {
		return nil, err
	}
	if err := to.Credit(cmd.Amount); err != nil {
		return nil, err
	}

	if err := h.characters.Save(ctx, from); err != nil {
		return nil, err
	}
	if err := h.characters.Save(ctx, to); err != nil {
		return nil, err
	}

	h.emit(ctx, events.Event{
		Name: events.CreditsTransfer,
		Payload: map[string]interface{}{
			"from_character_id": from.ID,
			"to_character_id":   to.ID,
			"amount":            cmd.Amount,
		},
		Summary: from.Name + " transferred " + strconv.Itoa(cmd.Amount) + " credits to " + to.Name,
		Filter:  events.ToCharacters(from.ID, to.ID),
	})
	h.emit(ctx, events.Event{
		Name:    events.StatusUpdate,
		Payload: map[string]interface{}{"character_id": from.ID, "credits": events.CreditsPayload(from)},
		Filter:  events.ToCharacters(from.ID),
	})
	h.emit(ctx, events.Event{
		Name:    events.StatusUpdate,
		Payload: map[string]interface{}{"character_id": to.ID, "credits": events.CreditsPayload(to)},
		Filter:  events.ToCharacters(to.ID),
	})

	return &TransferCreditsResponse{Amount: cmd.Amount, CreditsOnHand: from.CreditsOnHand}, nil
}

func (h *TransferCreditsHandler) emit(ctx context.Context, evt events.Event) {
	if err := h.bus.Emit(ctx, evt); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": evt.Name,
			"error": err.Error(),
		})
	}
}
