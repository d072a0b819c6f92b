package main

import (
	admincmds "github.com/andrescamacho/tradewars-server/internal/application/admin/commands"
	chatcmds "github.com/andrescamacho/tradewars-server/internal/application/chat/commands"
	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	combatcmds "github.com/andrescamacho/tradewars-server/internal/application/combat/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	corpcmds "github.com/andrescamacho/tradewars-server/internal/application/corporation/commands"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	garrisoncmds "github.com/andrescamacho/tradewars-server/internal/application/garrison/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	movementcmds "github.com/andrescamacho/tradewars-server/internal/application/movement/commands"
	playercmds "github.com/andrescamacho/tradewars-server/internal/application/player/commands"
	salvagecmds "github.com/andrescamacho/tradewars-server/internal/application/salvage/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	tradingcmds "github.com/andrescamacho/tradewars-server/internal/application/trading/commands"
	transfercmds "github.com/andrescamacho/tradewars-server/internal/application/transfer/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// registerHandlers binds every command type to its handler on the
// mediator. One registration per wire command; the dispatcher's registry
// maps command names to these request types.
func registerHandlers(
	m common.Mediator,
	rules common.Rules,
	clock shared.Clock,
	bus *appevents.Bus,
	lockManager *locks.Manager,
	index *sector.Index,
	roster *appevents.Roster,
	builder *view.Builder,
	combatManager *appcombat.Manager,
	scheduler *appcombat.Scheduler,
	hub *appevents.Hub,
	universe *world.Universe,
	catalog world.ShipCatalog,
	resetter world.Resetter,
	eventLog events.Log,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	ports world.PortRepository,
	garrisons world.GarrisonRepository,
	salvage world.SalvageRepository,
	corporations world.CorporationRepository,
	knowledge world.KnowledgeRepository,
) error {
	registrations := []func() error{
		func() error {
			return common.RegisterHandler[*playercmds.JoinCommand](m,
				playercmds.NewJoinHandler(rules, clock, bus, index, builder, catalog, characters, ships, knowledge, universe))
		},
		func() error {
			return common.RegisterHandler[*playercmds.MyStatusCommand](m,
				playercmds.NewMyStatusHandler(bus, builder, characters))
		},
		func() error {
			return common.RegisterHandler[*movementcmds.MoveCommand](m,
				movementcmds.NewMoveHandler(rules, clock, bus, lockManager, index, builder, combatManager, universe, catalog, characters, ships, ports, knowledge))
		},
		func() error {
			return common.RegisterHandler[*movementcmds.PlotCourseCommand](m,
				movementcmds.NewPlotCourseHandler(bus, universe, characters))
		},
		func() error {
			return common.RegisterHandler[*movementcmds.MyMapCommand](m,
				movementcmds.NewMyMapHandler(bus, knowledge))
		},
		func() error {
			return common.RegisterHandler[*tradingcmds.TradeCommand](m,
				tradingcmds.NewTradeHandler(bus, lockManager, world.DefaultPriceFunc, catalog, characters, ships, ports))
		},
		func() error {
			return common.RegisterHandler[*tradingcmds.RechargeWarpPowerCommand](m,
				tradingcmds.NewRechargeWarpPowerHandler(rules, bus, lockManager, catalog, characters, ships))
		},
		func() error {
			return common.RegisterHandler[*tradingcmds.PurchaseFightersCommand](m,
				tradingcmds.NewPurchaseFightersHandler(rules, bus, lockManager, catalog, characters, ships))
		},
		func() error {
			return common.RegisterHandler[*tradingcmds.ShipPurchaseCommand](m,
				tradingcmds.NewShipPurchaseHandler(rules, bus, lockManager, catalog, characters, ships))
		},
		func() error {
			return common.RegisterHandler[*transfercmds.TransferCreditsCommand](m,
				transfercmds.NewTransferCreditsHandler(bus, lockManager, characters))
		},
		func() error {
			return common.RegisterHandler[*transfercmds.TransferWarpPowerCommand](m,
				transfercmds.NewTransferWarpPowerHandler(bus, catalog, characters, ships))
		},
		func() error {
			return common.RegisterHandler[*transfercmds.BankTransferCommand](m,
				transfercmds.NewBankTransferHandler(rules, bus, lockManager, characters))
		},
		func() error {
			return common.RegisterHandler[*garrisoncmds.LeaveFightersCommand](m,
				garrisoncmds.NewLeaveFightersHandler(bus, index, characters, ships, garrisons))
		},
		func() error {
			return common.RegisterHandler[*garrisoncmds.CollectFightersCommand](m,
				garrisoncmds.NewCollectFightersHandler(bus, lockManager, index, catalog, characters, ships, garrisons))
		},
		func() error {
			return common.RegisterHandler[*garrisoncmds.SetGarrisonModeCommand](m,
				garrisoncmds.NewSetGarrisonModeHandler(bus, index, characters, garrisons))
		},
		func() error {
			return common.RegisterHandler[*salvagecmds.DumpCargoCommand](m,
				salvagecmds.NewDumpCargoHandler(rules, clock, bus, index, catalog, characters, ships, salvage))
		},
		func() error {
			return common.RegisterHandler[*salvagecmds.SalvageCollectCommand](m,
				salvagecmds.NewSalvageCollectHandler(bus, lockManager, index, catalog, characters, ships, salvage))
		},
		func() error {
			return common.RegisterHandler[*combatcmds.CombatInitiateCommand](m,
				combatcmds.NewCombatInitiateHandler(combatManager, characters))
		},
		func() error {
			return common.RegisterHandler[*combatcmds.CombatActionCommand](m,
				combatcmds.NewCombatActionHandler(combatManager))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationCreateCommand](m,
				corpcmds.NewCorporationCreateHandler(rules, clock, bus, lockManager, roster, characters, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationJoinCommand](m,
				corpcmds.NewCorporationJoinHandler(bus, roster, characters, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationLeaveCommand](m,
				corpcmds.NewCorporationLeaveHandler(bus, roster, characters, ships, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationKickCommand](m,
				corpcmds.NewCorporationKickHandler(bus, roster, characters, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationDisbandCommand](m,
				corpcmds.NewCorporationDisbandHandler(bus, roster, characters, ships, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationBuyShipCommand](m,
				corpcmds.NewCorporationBuyShipHandler(rules, bus, lockManager, catalog, characters, ships, corporations))
		},
		func() error {
			return common.RegisterHandler[*corpcmds.CorporationRegenerateInviteCommand](m,
				corpcmds.NewCorporationRegenerateInviteHandler(bus, characters, corporations))
		},
		func() error {
			return common.RegisterHandler[*chatcmds.SendChatCommand](m,
				chatcmds.NewSendChatHandler(bus, characters))
		},
		func() error {
			return common.RegisterHandler[*admincmds.EventQueryCommand](m,
				admincmds.NewEventQueryHandler(eventLog))
		},
		func() error {
			return common.RegisterHandler[*admincmds.TestResetCommand](m,
				admincmds.NewTestResetHandler(rules, scheduler, combatManager, hub, index, roster, resetter, eventLog))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}
