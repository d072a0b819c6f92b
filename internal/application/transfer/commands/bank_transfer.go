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

// BankDirection is the side of a bank transaction.
type BankDirection string

const (
	BankDeposit  BankDirection = "deposit"
	BankWithdraw BankDirection = "withdraw"
)

// BankTransferCommand moves credits between hand and bank. Only allowed
// in the banking sector.
type BankTransferCommand struct {
	CharacterID string `json:"character_id"`
	Direction   string `json:"direction"`
	Amount      int    `json:"amount"`
}

// BankTransferResponse reports both post-transaction balances
type BankTransferResponse struct {
	CreditsOnHand int
	CreditsInBank int
}

// BankTransferHandler moves credits between on-hand and banked balances
// under the character's credit lock
type BankTransferHandler struct {
	rules      common.Rules
	bus        *appevents.Bus
	locks      *locks.Manager
	characters world.CharacterRepository
}

// NewBankTransferHandler creates a new bank transfer handler
func NewBankTransferHandler(rules common.Rules, bus *appevents.Bus, lockManager *locks.Manager, characters world.CharacterRepository) *BankTransferHandler {
	return &BankTransferHandler{rules: rules, bus: bus, locks: lockManager, characters: characters}
}

// Handle executes the bank_transfer command
func (h *BankTransferHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*BankTransferCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Amount <= 0 {
		return nil, shared.NewTypeError("amount", "must be a positive integer")
	}
	direction := BankDirection(cmd.Direction)
	if direction != BankDeposit && direction != BankWithdraw {
		return nil, shared.NewValidationError("direction", "must be deposit or withdraw")
	}

	guard, err := h.locks.Acquire(ctx, locks.CreditKey(cmd.CharacterID))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	character, err := h.characters.FindByID(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.SectorID != h.rules.BankingSectorID {
		return nil, shared.NewConflictError("banking is only available in sector " + strconv.Itoa(h.rules.BankingSectorID))
	}

	switch direction {
	case BankDeposit:
		if err := character.Debit(cmd.Amount); err != nil {
			return nil, err
		}
		character.CreditsInBank += cmd.Amount
	case BankWithdraw:
		if character.CreditsInBank < cmd.Amount {
			return nil, shared.NewInsufficientCreditsError(cmd.Amount, character.CreditsInBank)
		}
		character.CreditsInBank -= cmd.Amount
		if err := character.Credit(cmd.Amount); err != nil {
			return nil, err
		}
	}

	if err := h.characters.Save(ctx, character); err != nil {
		return nil, err
	}

	if err := h.bus.Emit(ctx, events.Event{
		Name: events.BankTransaction,
		Payload: map[string]interface{}{
			"character_id": character.ID,
			"direction":    string(direction),
			"amount":       cmd.Amount,
			"credits":      events.CreditsPayload(character),
		},
		Filter: events.ToCharacters(character.ID),
	}); err != nil {
		common.LoggerFromContext(ctx).Log("error", "event emission failed", map[string]interface{}{
			"event": events.BankTransaction,
			"error": err.Error(),
		})
	}

	return &BankTransferResponse{
		CreditsOnHand: character.CreditsOnHand,
		CreditsInBank: character.CreditsInBank,
	}, nil
}
