package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// fixedRoller removes randomness so the round math is exact.
type fixedRoller struct {
	value float64
}

func (f fixedRoller) Roll(string, int, string, string) float64 {
	return f.value
}

func newCharacter(id, name string, fighters, shields, maxShields int) *combat.Combatant {
	return &combat.Combatant{
		ID:          id,
		Kind:        combat.CombatantCharacter,
		Name:        name,
		Fighters:    fighters,
		MaxFighters: fighters,
		Shields:     shields,
		MaxShields:  maxShields,
	}
}

func newEncounter(t *testing.T, combatants ...*combat.Combatant) *combat.Encounter {
	t.Helper()
	e := combat.NewEncounter("combat-1", 7, "char-a", "attack", time.Now().Add(30*time.Second))
	for _, c := range combatants {
		e.AddCombatant(c)
	}
	return e
}

func TestResolve_SimultaneousAttacksAreSymmetric(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 100}, 1))
	require.NoError(t, e.SubmitAction("char-b", combat.Action{Kind: combat.ActionAttack, TargetID: "char-a", Commit: 100}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	// With roll 0.5 both hit rolls are exactly 1.0: 100 offense absorbs 50
	// shields, 50 overflow, plus 17 attacker losses against a half-shielded
	// defender. Both sides must land in the identical state.
	assert.Equal(t, 1, outcome.Round)
	assert.False(t, outcome.Ended)
	for _, id := range []string{"char-a", "char-b"} {
		report := outcome.Reports[id]
		require.NotNil(t, report)
		assert.Equal(t, 100, report.PreFighters)
		assert.Equal(t, 50, report.PreShields)
		assert.Equal(t, 33, report.PostFighters)
		assert.Equal(t, 0, report.PostShields)
		assert.Equal(t, 67, report.FighterLoss)
		assert.Equal(t, 50, report.ShieldDamage)
		assert.False(t, report.Defeated)
	}
	assert.Equal(t, 33, a.Fighters)
	assert.Equal(t, 33, b.Fighters)
}

func TestResolve_BraceHalvesIncomingDamage(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 100}, 1))
	require.NoError(t, e.SubmitAction("char-b", combat.Brace(), 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	// 100 offense halved to 50 lands entirely on shields: the braced
	// defender keeps every fighter while the attacker pays the usual toll.
	assert.Equal(t, 100, b.Fighters)
	assert.Equal(t, 0, b.Shields)
	assert.Equal(t, 50, outcome.Reports["char-b"].ShieldDamage)
	assert.Equal(t, 83, a.Fighters)
	assert.Equal(t, 17, outcome.Reports["char-a"].FighterLoss)
	assert.False(t, outcome.Ended)
}

func TestResolve_SilentParticipantDefaultsToBrace(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 50, 100)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 100}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	assert.Equal(t, combat.ActionBrace, outcome.Actions["char-b"].Kind)
	assert.Equal(t, 100, b.Fighters)
	assert.Equal(t, 0, b.Shields)
}

func TestResolve_DefeatEndsEncounterWithNamedResult(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 10, 0, 0)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 100}, 1))
	require.NoError(t, e.SubmitAction("char-b", combat.Action{Kind: combat.ActionAttack, TargetID: "char-a", Commit: 10}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	assert.True(t, outcome.Ended)
	assert.Equal(t, "Bob_defeated", outcome.Result)
	assert.Equal(t, []string{"char-b"}, outcome.DefeatedCharacters)
	assert.True(t, b.Defeated)
	assert.True(t, outcome.Reports["char-b"].Defeated)
	assert.False(t, a.Defeated)
}

func TestResolve_FleeSucceedsWithFullWarpPower(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 10, 20, 50)
	b.WarpPower = 100
	b.WarpCapacity = 100
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Brace(), 1))
	require.NoError(t, e.SubmitAction("char-b", combat.Action{Kind: combat.ActionFlee, DestinationSector: 12}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	require.Len(t, outcome.FleeResults, 1)
	flee := outcome.FleeResults[0]
	assert.Equal(t, "char-b", flee.CombatantID)
	assert.Equal(t, 12, flee.Destination)
	// p = 0.4 + 0.4*(100/100) - 0.3*(100/110)
	assert.InDelta(t, 0.5273, flee.Probability, 0.001)
	assert.True(t, flee.Success)
	assert.True(t, b.Fled)
	assert.True(t, outcome.Reports["char-b"].Fled)
	assert.True(t, outcome.Ended)
	assert.Equal(t, "resolved", outcome.Result)
}

func TestResolve_FleeFailureKeepsCombatantInFight(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 10, 20, 50)
	b.WarpPower = 0
	b.WarpCapacity = 100
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-a", combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 50}, 1))
	require.NoError(t, e.SubmitAction("char-b", combat.Action{Kind: combat.ActionFlee, DestinationSector: 12}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.9})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	require.Len(t, outcome.FleeResults, 1)
	assert.False(t, outcome.FleeResults[0].Success)
	assert.False(t, b.Fled)
	assert.False(t, outcome.Ended)

	// The failed fleer takes damage at flee-target efficacy, not under
	// brace mitigation: 50*1.16*0.5 = 29 incoming, shields absorb 20 and
	// the 9-point overflow lands on fighters in full.
	assert.Equal(t, 0, b.Shields)
	assert.Equal(t, 1, b.Fighters)
}

func TestResolve_ShieldsRechargeFromRoundTwo(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 100, 100, 100)
	e := newEncounter(t, a, b)
	e.AdvanceRound(time.Now().Add(30 * time.Second))
	require.Equal(t, 2, e.Round)

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	resolver.Resolve(e)

	// Assert
	// Both brace by default; the damaged hull regains 10% of max shields
	// and the full one stays capped.
	assert.Equal(t, 60, a.Shields)
	assert.Equal(t, 100, b.Shields)
}

func TestResolve_OffensiveGarrisonAttacksStrongestHostileWithBurstCap(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	weaker := newCharacter("char-b", "Bob", 20, 10, 50)
	e := newEncounter(t, a, weaker)
	garrison := e.CaptureGarrison(&world.Garrison{
		SectorID: 7,
		OwnerID:  "char-c",
		Fighters: 200,
		Mode:     world.GarrisonOffensive,
	})

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	order := outcome.Actions[garrison.ID]
	assert.Equal(t, combat.ActionAttack, order.Kind)
	assert.Equal(t, "char-a", order.TargetID)
	assert.Equal(t, 50, order.Commit)
	// 50 commit halved against a braced target lands 25 on shields.
	assert.Equal(t, 25, a.Shields)
	assert.Equal(t, 100, a.Fighters)
	// Garrison pays 50 * (0.05 + 0.25*0.5) fighters in the exchange.
	assert.Equal(t, 192, garrison.Fighters)
}

func TestResolve_DefensiveGarrisonOnlyReturnsFire(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	e := newEncounter(t, a)
	garrison := e.CaptureGarrison(&world.Garrison{
		SectorID: 7,
		OwnerID:  "char-c",
		Fighters: 80,
		Mode:     world.GarrisonDefensive,
	})

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	t.Run("braces while unprovoked", func(t *testing.T) {
		outcome := resolver.Resolve(e)
		assert.Equal(t, combat.ActionBrace, outcome.Actions[garrison.ID].Kind)
	})

	t.Run("returns fire at its attacker", func(t *testing.T) {
		e.AdvanceRound(time.Now().Add(30 * time.Second))
		require.NoError(t, e.SubmitAction("char-a",
			combat.Action{Kind: combat.ActionAttack, TargetID: garrison.ID, Commit: 10}, 2))

		outcome := resolver.Resolve(e)

		order := outcome.Actions[garrison.ID]
		assert.Equal(t, combat.ActionAttack, order.Kind)
		assert.Equal(t, "char-a", order.TargetID)
	})
}

func TestResolve_GarrisonDestroyedAtZeroFighters(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 200, 50, 100)
	e := newEncounter(t, a)
	garrison := e.CaptureGarrison(&world.Garrison{
		SectorID: 7,
		OwnerID:  "char-c",
		Fighters: 10,
		Mode:     world.GarrisonDefensive,
	})
	require.NoError(t, e.SubmitAction("char-a",
		combat.Action{Kind: combat.ActionAttack, TargetID: garrison.ID, Commit: 200}, 1))

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	assert.Equal(t, []string{garrison.ID}, outcome.DestroyedGarrisons)
	assert.True(t, garrison.Defeated)
	assert.True(t, outcome.Ended)
	assert.Equal(t, "resolved", outcome.Result)
}

func TestResolve_OverCommitClampsToAvailableFighters(t *testing.T) {
	// Arrange
	a := newCharacter("char-a", "Alice", 100, 50, 100)
	b := newCharacter("char-b", "Bob", 30, 0, 0)
	e := newEncounter(t, a, b)
	require.NoError(t, e.SubmitAction("char-b",
		combat.Action{Kind: combat.ActionAttack, TargetID: "char-a", Commit: 30}, 1))
	// The loss phase of a previous exchange can leave the pending commit
	// above the surviving fighter count; resolution clamps it.
	b.Fighters = 5

	resolver := combat.NewResolver(combat.DefaultTuning(), fixedRoller{value: 0.5})

	// Act
	outcome := resolver.Resolve(e)

	// Assert
	assert.Equal(t, 5, outcome.Actions["char-b"].Commit)
}

func TestSeededRoller_IsDeterministic(t *testing.T) {
	// Arrange
	roller := combat.NewSeededRoller(42)

	// Act
	first := roller.Roll("combat-1", 3, "char-a", "char-b")
	second := roller.Roll("combat-1", 3, "char-a", "char-b")
	otherRound := roller.Roll("combat-1", 4, "char-a", "char-b")
	otherSeed := combat.NewSeededRoller(43).Roll("combat-1", 3, "char-a", "char-b")

	// Assert
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0.0)
	assert.Less(t, first, 1.0)
	assert.NotEqual(t, first, otherRound)
	assert.NotEqual(t, first, otherSeed)
}
