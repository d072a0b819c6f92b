package dispatch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	admincmds "github.com/andrescamacho/tradewars-server/internal/application/admin/commands"
	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	combatcmds "github.com/andrescamacho/tradewars-server/internal/application/combat/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/application/dispatch"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	garrisoncmds "github.com/andrescamacho/tradewars-server/internal/application/garrison/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	movementcmds "github.com/andrescamacho/tradewars-server/internal/application/movement/commands"
	playercmds "github.com/andrescamacho/tradewars-server/internal/application/player/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	tradingcmds "github.com/andrescamacho/tradewars-server/internal/application/trading/commands"
	transfercmds "github.com/andrescamacho/tradewars-server/internal/application/transfer/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

const testAdminPassword = "test-admin-secret"

type fixture struct {
	dispatcher *dispatch.Dispatcher
	hub        *appevents.Hub
	ports      world.PortRepository
	characters world.CharacterRepository
	manager    *appcombat.Manager
}

// newFixture wires the full command path over an in-memory database,
// mirroring the production composition.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := helpers.NewTestDB(t)

	characters := persistence.NewGormCharacterRepository(db)
	ships := persistence.NewGormShipRepository(db)
	ports := persistence.NewGormPortRepository(db)
	garrisons := persistence.NewGormGarrisonRepository(db)
	salvage := persistence.NewGormSalvageRepository(db)
	corporations := persistence.NewGormCorporationRepository(db)
	knowledge := persistence.NewGormKnowledgeRepository(db)
	eventLog := persistence.NewGormEventLog(db)
	resetter := persistence.NewGormResetter(db)

	universe := world.DefaultUniverse()
	catalog := world.DefaultCatalog()
	clock := shared.NewRealClock()
	index := sector.NewIndex()
	roster := appevents.NewRoster(index)
	hub := appevents.NewHub()
	bus := appevents.NewBus(clock, roster, hub, eventLog, nil)
	lockManager := locks.NewManager()

	rules := common.Rules{
		FighterPrice:            50,
		WarpPowerPrice:          5,
		WarpCostPerTurn:         1,
		BankingSectorID:         0,
		StartingSectorID:        0,
		StartingCredits:         2000,
		StartingShipType:        "merchant_cruiser",
		CorporationCreationCost: 10000,
		SalvageTTL:              time.Minute,
		AdminPassword:           testAdminPassword,
		EnableTestCommands:      true,
	}

	builder := view.NewBuilder(universe, catalog, index, characters, ships, ports, salvage)
	resolver := combat.NewResolver(combat.DefaultTuning(), combat.NewSeededRoller(1))
	manager := appcombat.NewManager(
		appcombat.Settings{RoundWindow: time.Minute, MaxParticipants: 8, SalvageTTL: time.Minute, WarpCostPerTurn: 1},
		lockManager, resolver, clock, bus, index, universe, catalog,
		characters, ships, garrisons, salvage,
	)
	scheduler := appcombat.NewScheduler(manager, salvage, index, clock, time.Second)

	mediator := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*playercmds.JoinCommand](mediator,
		playercmds.NewJoinHandler(rules, clock, bus, index, builder, catalog, characters, ships, knowledge, universe)))
	require.NoError(t, common.RegisterHandler[*movementcmds.MoveCommand](mediator,
		movementcmds.NewMoveHandler(rules, clock, bus, lockManager, index, builder, manager, universe, catalog, characters, ships, ports, knowledge)))
	require.NoError(t, common.RegisterHandler[*tradingcmds.TradeCommand](mediator,
		tradingcmds.NewTradeHandler(bus, lockManager, world.DefaultPriceFunc, catalog, characters, ships, ports)))
	require.NoError(t, common.RegisterHandler[*transfercmds.TransferCreditsCommand](mediator,
		transfercmds.NewTransferCreditsHandler(bus, lockManager, characters)))
	require.NoError(t, common.RegisterHandler[*garrisoncmds.LeaveFightersCommand](mediator,
		garrisoncmds.NewLeaveFightersHandler(bus, index, characters, ships, garrisons)))
	require.NoError(t, common.RegisterHandler[*combatcmds.CombatInitiateCommand](mediator,
		combatcmds.NewCombatInitiateHandler(manager, characters)))
	require.NoError(t, common.RegisterHandler[*combatcmds.CombatActionCommand](mediator,
		combatcmds.NewCombatActionHandler(manager)))
	require.NoError(t, common.RegisterHandler[*admincmds.EventQueryCommand](mediator,
		admincmds.NewEventQueryHandler(eventLog)))
	require.NoError(t, common.RegisterHandler[*admincmds.TestResetCommand](mediator,
		admincmds.NewTestResetHandler(rules, scheduler, manager, hub, index, roster, resetter, eventLog)))

	// Sector 0 holds the stock port the trade scenarios run against.
	require.NoError(t, ports.Save(context.Background(), world.NewPort(0, "SBB", 100)))

	return &fixture{
		dispatcher: dispatch.NewDispatcher(mediator, lockManager, manager, bus, characters, ships, corporations, testAdminPassword),
		hub:        hub,
		ports:      ports,
		characters: characters,
		manager:    manager,
	}
}

func (f *fixture) dispatch(t *testing.T, frame string) map[string]interface{} {
	t.Helper()
	return f.dispatcher.Dispatch(context.Background(), []byte(frame))
}

func (f *fixture) join(t *testing.T, characterID, name string) {
	t.Helper()
	response := f.dispatch(t, fmt.Sprintf(`{"command":"join","character_id":%q,"name":%q}`, characterID, name))
	require.Equal(t, true, response["success"], "join failed: %v", response)
}

func TestDispatch_MalformedAndUnknownCommands(t *testing.T) {
	f := newFixture(t)

	t.Run("malformed frame", func(t *testing.T) {
		response := f.dispatch(t, `{"command":`)

		assert.Equal(t, false, response["success"])
		assert.Equal(t, 400, response["status"])
	})

	t.Run("unknown command", func(t *testing.T) {
		response := f.dispatch(t, `{"command":"self_destruct","character_id":"char-1"}`)

		assert.Equal(t, false, response["success"])
		assert.Equal(t, 400, response["status"])
		assert.Contains(t, response["detail"], "unknown command")
	})
}

func TestDispatch_JoinAndDuplicate(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	response := f.dispatch(t, `{"command":"join","character_id":"char-1","name":"Alice","request_id":"req-1"}`)

	// Assert
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "join", response["command"])
	assert.Equal(t, "req-1", response["request_id"])
	result, ok := response["result"].(*playercmds.JoinResponse)
	require.True(t, ok)
	assert.Equal(t, 0, result.SectorID)

	// A second join under the same id conflicts.
	duplicate := f.dispatch(t, `{"command":"join","character_id":"char-1","name":"Alice"}`)
	assert.Equal(t, false, duplicate["success"])
	assert.Equal(t, 409, duplicate["status"])
}

func TestDispatch_UnknownCharacterFailsPrecheck(t *testing.T) {
	f := newFixture(t)

	response := f.dispatch(t, `{"command":"my_status","character_id":"char-ghost"}`)

	// my_status is registered in the command registry but the character
	// does not exist, so the shared precheck rejects it first.
	assert.Equal(t, false, response["success"])
	assert.Equal(t, 404, response["status"])
}

func TestDispatch_TypeMismatchIsUnprocessable(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")

	// Act
	response := f.dispatch(t, `{"command":"move","character_id":"char-1","to_sector":"north"}`)

	// Assert
	assert.Equal(t, false, response["success"])
	assert.Equal(t, 422, response["status"])
}

func TestDispatch_TradeBuyAppliesStockCurve(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")

	// Act
	response := f.dispatch(t, `{"command":"trade","character_id":"char-1","commodity":"qf","units":10,"kind":"buy"}`)

	// Assert
	require.Equal(t, true, response["success"], "trade failed: %v", response)
	result, ok := response["result"].(*tradingcmds.TradeResponse)
	require.True(t, ok)
	// Full stock prices at the curve floor: 20 - 15*100/100 = 5 a unit.
	assert.Equal(t, 5, result.UnitPrice)
	assert.Equal(t, 50, result.TotalPrice)
	assert.Equal(t, 1950, result.Credits)

	port, err := f.ports.FindBySector(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 90, port.Stock[shared.CommodityQuantumFoam])
}

func TestDispatch_RequestIDRetryReturnsCachedResponse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")
	frame := `{"command":"trade","character_id":"char-1","commodity":"qf","units":10,"kind":"buy","request_id":"req-trade-1"}`

	// Act
	first := f.dispatch(t, frame)
	second := f.dispatch(t, frame)

	// Assert
	require.Equal(t, true, first["success"])
	assert.Equal(t, first, second)

	// The retry must not re-execute the trade.
	port, err := f.ports.FindBySector(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 90, port.Stock[shared.CommodityQuantumFoam])
	character, err := f.characters.FindByID(context.Background(), "char-1")
	require.NoError(t, err)
	assert.Equal(t, 1950, character.CreditsOnHand)
}

func TestDispatch_MoveRejectsNonAdjacentSector(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")

	// Act
	adjacent := f.dispatch(t, `{"command":"move","character_id":"char-1","to_sector":1}`)
	skip := f.dispatch(t, `{"command":"move","character_id":"char-1","to_sector":4}`)

	// Assert
	require.Equal(t, true, adjacent["success"], "move failed: %v", adjacent)
	result, ok := adjacent["result"].(*movementcmds.MoveResponse)
	require.True(t, ok)
	assert.Equal(t, 1, result.SectorID)
	assert.Equal(t, 3, result.WarpCost)

	assert.Equal(t, false, skip["success"])
	assert.Equal(t, 400, skip["status"])
}

func TestDispatch_TransferCreditsRequiresSharedSector(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")
	f.join(t, "char-2", "Bob")

	// Act
	sameSector := f.dispatch(t, `{"command":"transfer_credits","character_id":"char-1","to_character_id":"char-2","amount":500}`)

	moved := f.dispatch(t, `{"command":"move","character_id":"char-2","to_sector":1}`)
	require.Equal(t, true, moved["success"])
	apart := f.dispatch(t, `{"command":"transfer_credits","character_id":"char-1","to_character_id":"char-2","amount":100}`)

	// Assert
	require.Equal(t, true, sameSector["success"], "transfer failed: %v", sameSector)
	result, ok := sameSector["result"].(*transfercmds.TransferCreditsResponse)
	require.True(t, ok)
	assert.Equal(t, 1500, result.CreditsOnHand)

	assert.Equal(t, false, apart["success"])
	assert.Equal(t, 409, apart["status"])
}

func TestDispatch_GarrisonDeployAndForeignConflict(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")
	f.join(t, "char-2", "Bob")

	// Act
	deploy := f.dispatch(t, `{"command":"combat_leave_fighters","character_id":"char-1","fighters":50,"mode":"defensive"}`)
	foreign := f.dispatch(t, `{"command":"combat_leave_fighters","character_id":"char-2","fighters":10,"mode":"defensive"}`)

	// Assert
	require.Equal(t, true, deploy["success"], "deploy failed: %v", deploy)
	result, ok := deploy["result"].(*garrisoncmds.LeaveFightersResponse)
	require.True(t, ok)
	assert.Equal(t, 50, result.Fighters)

	assert.Equal(t, false, foreign["success"])
	assert.Equal(t, 409, foreign["status"])
}

func TestDispatch_CombatLifecycle(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")
	f.join(t, "char-2", "Bob")

	// Act
	initiate := f.dispatch(t, `{"command":"combat_initiate","character_id":"char-1"}`)

	// Assert
	require.Equal(t, true, initiate["success"], "initiate failed: %v", initiate)
	result, ok := initiate["result"].(*combatcmds.CombatInitiateResponse)
	require.True(t, ok)
	assert.Equal(t, 0, result.SectorID)
	assert.Equal(t, 1, result.Round)

	t.Run("non-combat commands are blocked", func(t *testing.T) {
		blocked := f.dispatch(t, `{"command":"move","character_id":"char-1","to_sector":1}`)

		assert.Equal(t, false, blocked["success"])
		assert.Equal(t, 409, blocked["status"])
		assert.Contains(t, blocked["detail"], "in combat")
	})

	t.Run("stale round is rejected with its code", func(t *testing.T) {
		stale := f.dispatch(t, fmt.Sprintf(
			`{"command":"combat_action","character_id":"char-1","combat_id":%q,"round":5,"action":"brace"}`, result.CombatID))

		assert.Equal(t, false, stale["success"])
		assert.Equal(t, 409, stale["status"])
		assert.Equal(t, "stale_round", stale["code"])
	})

	t.Run("attack without commit is rejected", func(t *testing.T) {
		attack := f.dispatch(t, fmt.Sprintf(
			`{"command":"combat_action","character_id":"char-1","combat_id":%q,"round":1,"action":"attack","target_id":"char-2"}`, result.CombatID))

		assert.Equal(t, false, attack["success"])
		assert.Equal(t, 400, attack["status"])
	})
}

func TestDispatch_CombatInitiateWithoutOpponents(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")

	// Act
	response := f.dispatch(t, `{"command":"combat_initiate","character_id":"char-1"}`)

	// Assert
	assert.Equal(t, false, response["success"])
	assert.Equal(t, 400, response["status"])
	assert.Equal(t, "no_opponents", response["code"])
}

func TestDispatch_AdminAuthorization(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")

	t.Run("wrong admin password always fails", func(t *testing.T) {
		response := f.dispatch(t, `{"command":"my_status","character_id":"char-1","admin_password":"wrong"}`)

		assert.Equal(t, false, response["success"])
		assert.Equal(t, 403, response["status"])
	})

	t.Run("admin-only command requires credentials", func(t *testing.T) {
		response := f.dispatch(t, `{"command":"test_reset"}`)

		assert.Equal(t, false, response["success"])
		assert.Equal(t, 403, response["status"])
	})

	t.Run("actor cannot query another character's events", func(t *testing.T) {
		response := f.dispatch(t, `{"command":"event_query","character_id":"char-1","actor_character_id":"char-2"}`)

		assert.Equal(t, false, response["success"])
		assert.Equal(t, 403, response["status"])
	})
}

func TestDispatch_TestResetWipesWorldAndCache(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.join(t, "char-1", "Alice")
	frame := `{"command":"trade","character_id":"char-1","commodity":"qf","units":5,"kind":"buy","request_id":"req-1"}`
	require.Equal(t, true, f.dispatch(t, frame)["success"])

	// Act
	reset := f.dispatch(t, fmt.Sprintf(`{"command":"test_reset","admin_password":%q}`, testAdminPassword))

	// Assert
	require.Equal(t, true, reset["success"], "reset failed: %v", reset)
	_, err := f.characters.FindByID(context.Background(), "char-1")
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The idempotency cache was cleared with the world: rejoining and
	// replaying the old request id executes a fresh trade.
	require.NoError(t, f.ports.Save(context.Background(), world.NewPort(0, "SBB", 100)))
	f.join(t, "char-1", "Alice")
	replay := f.dispatch(t, frame)
	require.Equal(t, true, replay["success"], "replayed trade failed: %v", replay)
	port, err := f.ports.FindBySector(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 95, port.Stock[shared.CommodityQuantumFoam])
}
