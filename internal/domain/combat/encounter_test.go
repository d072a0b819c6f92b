package combat_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

func TestSubmitAction_RejectsStaleRound(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)
	e.AdvanceRound(time.Now().Add(30 * time.Second))

	// Act
	err := e.SubmitAction("char-a", combat.Brace(), 1)

	// Assert
	var stale *shared.StaleRoundError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, 1, stale.Submitted)
	assert.Equal(t, 2, stale.Current)
	assert.Equal(t, "stale_round", shared.CodeOf(err))
	assert.Equal(t, 409, shared.StatusOf(err))
}

func TestSubmitAction_ValidatesAttackCommit(t *testing.T) {
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)

	t.Run("zero commit", func(t *testing.T) {
		err := e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b"}, 1)

		var validation *shared.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, 400, shared.StatusOf(err))
	})

	t.Run("commit above fighters", func(t *testing.T) {
		err := e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 101}, 1)

		var validation *shared.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("self target", func(t *testing.T) {
		err := e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-a", Commit: 10}, 1)

		var validation *shared.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("unknown target", func(t *testing.T) {
		err := e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-x", Commit: 10}, 1)

		var notFound *shared.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("unknown combatant", func(t *testing.T) {
		err := e.SubmitAction("char-x", combat.Brace(), 1)

		var notFound *shared.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestSubmitAction_RejectsEndedEncounter(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	e := newEncounter(t, a)
	e.End(combat.ResultAdminTerminated)

	// Act
	err := e.SubmitAction("char-a", combat.Brace(), 1)

	// Assert
	var conflict *shared.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestAllActionsIn_IgnoresGarrisonsAndTheFallen(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	fled := newCharacter("char-c", "Carol", 100, 50, 100)
	fled.Fled = true
	e := newEncounter(t, a, b, fled)
	e.CaptureGarrison(&world.Garrison{SectorID: 7, OwnerID: "char-d", Fighters: 50, Mode: world.GarrisonDefensive})

	// Act / Assert
	assert.False(t, e.AllActionsIn())

	require.NoError(t, e.SubmitAction("char-a", combat.Brace(), 1))
	assert.False(t, e.AllActionsIn())

	require.NoError(t, e.SubmitAction("char-b", combat.Brace(), 1))
	assert.True(t, e.AllActionsIn())
}

func TestAdvanceRound_ClearsPendingActions(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Brace(), 1))
	deadline := time.Now().Add(45 * time.Second)

	// Act
	e.AdvanceRound(deadline)

	// Assert
	assert.Equal(t, 2, e.Round)
	assert.Empty(t, e.Pending)
	assert.Equal(t, deadline, e.Deadline)
	assert.Equal(t, combat.StateAwaitingRound, e.State)
}

func TestCaptureGarrison_IsIdempotent(t *testing.T) {
	// Arrange
	e := newEncounter(t, newCharacter("char-a", "Alice", 100, 50, 100))
	record := &world.Garrison{SectorID: 7, OwnerID: "char-d", Fighters: 50, Mode: world.GarrisonToll, TollAmount: 25}

	// Act
	first := e.CaptureGarrison(record)
	second := e.CaptureGarrison(record)

	// Assert
	assert.Same(t, first, second)
	assert.Equal(t, "garrison-7-char-d", first.ID)
	assert.Len(t, e.Context.CapturedGarrisons, 1)
	assert.Same(t, record, e.GarrisonFor(first.ID))
}

func TestTollGarrisonsAgainst_ExcludesTheOwner(t *testing.T) {
	// Arrange
	e := newEncounter(t, newCharacter("char-a", "Alice", 100, 50, 100))
	e.CaptureGarrison(&world.Garrison{SectorID: 7, OwnerID: "char-d", Fighters: 50, Mode: world.GarrisonToll, TollAmount: 25})

	// Act / Assert
	assert.Len(t, e.TollGarrisonsAgainst("char-a"), 1)
	assert.Empty(t, e.TollGarrisonsAgainst("char-d"))
}

func TestInterestedCharacterIDs_IncludesGarrisonOwners(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	e := newEncounter(t, a)
	e.CaptureGarrison(&world.Garrison{SectorID: 7, OwnerID: "char-d", Fighters: 50, Mode: world.GarrisonOffensive})

	// Act
	ids := e.InterestedCharacterIDs()

	// Assert
	assert.ElementsMatch(t, []string{"char-a", "char-d"}, ids)
}

func TestParseActionKind_RejectsInternalKinds(t *testing.T) {
	for _, valid := range []string{"attack", "brace", "flee", "pay"} {
		kind, err := combat.ParseActionKind(valid)
		require.NoError(t, err)
		assert.Equal(t, combat.ActionKind(valid), kind)
	}

	_, err := combat.ParseActionKind("timeout")
	assert.True(t, errors.As(err, new(*shared.ValidationError)))
}
