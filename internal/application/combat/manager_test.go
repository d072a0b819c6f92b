package combat_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

type managerFixture struct {
	manager    *appcombat.Manager
	index      *sector.Index
	characters world.CharacterRepository
	ships      world.ShipRepository
	garrisons  world.GarrisonRepository
	salvage    world.SalvageRepository
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	db := helpers.NewTestDB(t)

	characters := persistence.NewGormCharacterRepository(db)
	ships := persistence.NewGormShipRepository(db)
	garrisons := persistence.NewGormGarrisonRepository(db)
	salvage := persistence.NewGormSalvageRepository(db)
	eventLog := persistence.NewGormEventLog(db)

	universe := world.DefaultUniverse()
	catalog := world.DefaultCatalog()
	clock := shared.NewRealClock()
	index := sector.NewIndex()
	roster := appevents.NewRoster(index)
	hub := appevents.NewHub()
	bus := appevents.NewBus(clock, roster, hub, eventLog, nil)
	lockManager := locks.NewManager()
	resolver := combat.NewResolver(combat.DefaultTuning(), combat.NewSeededRoller(1))

	manager := appcombat.NewManager(
		appcombat.Settings{RoundWindow: time.Minute, MaxParticipants: 8, SalvageTTL: time.Minute, WarpCostPerTurn: 1},
		lockManager, resolver, clock, bus, index, universe, catalog,
		characters, ships, garrisons, salvage,
	)

	return &managerFixture{
		manager:    manager,
		index:      index,
		characters: characters,
		ships:      ships,
		garrisons:  garrisons,
		salvage:    salvage,
	}
}

// seedPilot creates a character on a merchant cruiser and places them in
// the sector index.
func (f *managerFixture) seedPilot(t *testing.T, id, name string, sectorID, fighters, shields, credits int) {
	t.Helper()
	ctx := context.Background()
	ship := &world.Ship{
		ID:        "ship-" + id,
		Name:      name + "'s Cruiser",
		TypeName:  "merchant_cruiser",
		OwnerKind: world.ShipOwnerCharacter,
		OwnerID:   id,
		Fighters:  fighters,
		Shields:   shields,
		WarpPower: 300,
	}
	require.NoError(t, f.ships.Save(ctx, ship))
	require.NoError(t, f.characters.Save(ctx, &world.Character{
		ID:            id,
		Name:          name,
		Kind:          world.CharacterKindHuman,
		SectorID:      sectorID,
		CreditsOnHand: credits,
		ShipID:        ship.ID,
	}))
	f.index.SetCharacter(id, sectorID, false)
}

func TestSubmitAction_PayTollShortCircuitsEncounter(t *testing.T) {
	// Arrange
	f := newManagerFixture(t)
	ctx := context.Background()
	f.seedPilot(t, "char-p", "Pia", 1, 100, 50, 1000)
	garrison := &world.Garrison{SectorID: 1, OwnerID: "char-o", Fighters: 50, Mode: world.GarrisonToll, TollAmount: 100}
	require.NoError(t, f.garrisons.Save(ctx, garrison))
	f.index.SetGarrison(garrison)

	encounter, err := f.manager.StartEncounter(ctx, 1, "char-p", "garrison_intercept", true)
	require.NoError(t, err)
	require.Equal(t, 1, encounter.Round)

	// Act
	err = f.manager.SubmitAction(ctx, encounter.ID, "char-p", combat.Action{Kind: combat.ActionPay}, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, combat.StateEnded, encounter.State)
	assert.Equal(t, combat.ResultTollSatisfied, encounter.Result)
	assert.Empty(t, encounter.Salvage)
	assert.Nil(t, f.manager.FindEncounterInSector(1))
	assert.Nil(t, f.manager.FindEncounterFor("char-p"))

	character, err := f.characters.FindByID(ctx, "char-p")
	require.NoError(t, err)
	assert.Equal(t, 900, character.CreditsOnHand)

	// The garrison banked the toll at full strength and is back on the
	// sector map.
	stored, err := f.garrisons.FindBySector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.TollBalance)
	assert.Equal(t, 50, stored.Fighters)
	require.NotNil(t, f.index.Snapshot(1).Garrison)
}

func TestResolveRound_DefeatedCharacterBecomesEscapePod(t *testing.T) {
	// Arrange
	f := newManagerFixture(t)
	ctx := context.Background()
	f.seedPilot(t, "char-a", "Alice", 7, 100, 50, 500)
	f.seedPilot(t, "char-b", "Bob", 7, 1, 0, 0)

	// Bob's hold and safe go down with the ship.
	hull, err := f.ships.FindByID(ctx, "ship-char-b")
	require.NoError(t, err)
	hull.Cargo = shared.Cargo{shared.CommodityRareOre: 12}
	hull.Credits = 200
	require.NoError(t, f.ships.Save(ctx, hull))

	encounter, err := f.manager.StartEncounter(ctx, 7, "char-a", "attack", false)
	require.NoError(t, err)

	// Act: the second submission completes the round and resolves it.
	require.NoError(t, f.manager.SubmitAction(ctx, encounter.ID, "char-b", combat.Brace(), 1))
	require.NoError(t, f.manager.SubmitAction(ctx, encounter.ID, "char-a",
		combat.Action{Kind: combat.ActionAttack, TargetID: "char-b", Commit: 100}, 1))

	// Assert
	assert.Equal(t, combat.StateEnded, encounter.State)
	assert.Equal(t, "Bob_defeated", encounter.Result)
	assert.Nil(t, f.manager.FindEncounterFor("char-a"))
	assert.Nil(t, f.manager.FindEncounterFor("char-b"))

	character, err := f.characters.FindByID(ctx, "char-b")
	require.NoError(t, err)
	pod, err := f.ships.FindByID(ctx, character.ShipID)
	require.NoError(t, err)
	assert.Equal(t, world.EscapePodType, pod.TypeName)
	assert.Equal(t, 0, pod.Fighters)

	hull, err = f.ships.FindByID(ctx, "ship-char-b")
	require.NoError(t, err)
	assert.Equal(t, world.ShipOwnerUnowned, hull.OwnerKind)

	// The salvage names the lost hull, never the character.
	drops, err := f.salvage.ListBySector(ctx, 7)
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, "Bob's Cruiser", drops[0].SourceShipName)
	assert.Equal(t, 12, drops[0].Cargo[shared.CommodityRareOre])
	assert.Equal(t, 200, drops[0].Credits)
	assert.Equal(t, 250, drops[0].Scrap)
}

func TestFindEncounterFor_IsSafeDuringMerges(t *testing.T) {
	// Arrange
	f := newManagerFixture(t)
	ctx := context.Background()
	f.seedPilot(t, "char-a", "Alice", 7, 100, 50, 0)
	f.seedPilot(t, "char-b", "Bob", 7, 100, 50, 0)

	encounter, err := f.manager.StartEncounter(ctx, 7, "char-a", "attack", false)
	require.NoError(t, err)

	// Act: hammer the cross-sector lookup while late arrivals merge into
	// the live encounter.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			f.manager.FindEncounterFor("char-a")
			f.manager.FindEncounterFor("char-b")
		}
	}()
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("char-late-%d", i)
		f.seedPilot(t, id, fmt.Sprintf("Late %d", i), 7, 10, 0, 0)
		_, err := f.manager.StartEncounter(ctx, 7, id, "attack", false)
		require.NoError(t, err)
	}
	<-done

	// Assert
	assert.Same(t, encounter, f.manager.FindEncounterFor("char-a"))
	assert.Same(t, encounter, f.manager.FindEncounterFor("char-late-5"))
}
