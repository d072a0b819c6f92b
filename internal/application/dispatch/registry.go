package dispatch

import (
	admincmds "github.com/andrescamacho/tradewars-server/internal/application/admin/commands"
	chatcmds "github.com/andrescamacho/tradewars-server/internal/application/chat/commands"
	combatcmds "github.com/andrescamacho/tradewars-server/internal/application/combat/commands"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	corpcmds "github.com/andrescamacho/tradewars-server/internal/application/corporation/commands"
	garrisoncmds "github.com/andrescamacho/tradewars-server/internal/application/garrison/commands"
	movementcmds "github.com/andrescamacho/tradewars-server/internal/application/movement/commands"
	playercmds "github.com/andrescamacho/tradewars-server/internal/application/player/commands"
	salvagecmds "github.com/andrescamacho/tradewars-server/internal/application/salvage/commands"
	tradingcmds "github.com/andrescamacho/tradewars-server/internal/application/trading/commands"
	transfercmds "github.com/andrescamacho/tradewars-server/internal/application/transfer/commands"
)

// commandSpec describes one wire command: how to build its typed request
// and which dispatcher pre-checks apply to it.
type commandSpec struct {
	make func() common.Request

	// noCharacter skips the existing-character lookup (join creates the
	// character; test_reset has no subject).
	noCharacter bool
	// adminOnly requires the configured admin password.
	adminOnly bool
	// ownerOrAdmin allows the character themselves in addition to admins.
	ownerOrAdmin bool
	// combatAllowed permits the command while the character fights.
	combatAllowed bool
	// hyperspaceOK permits the command mid-warp.
	hyperspaceOK bool
}

// defaultRegistry maps wire command names to their specs. Connection-level
// commands (pause_event_delivery, resume_event_delivery,
// subscribe_my_messages) are handled by the gateway and never reach the
// dispatcher.
func defaultRegistry() map[string]commandSpec {
	return map[string]commandSpec{
		"join": {
			make:        func() common.Request { return &playercmds.JoinCommand{} },
			noCharacter: true,
		},
		"my_status": {
			make:          func() common.Request { return &playercmds.MyStatusCommand{} },
			combatAllowed: true,
			hyperspaceOK:  true,
		},
		"my_map": {
			make:          func() common.Request { return &movementcmds.MyMapCommand{} },
			combatAllowed: true,
			hyperspaceOK:  true,
		},
		"plot_course": {
			make:          func() common.Request { return &movementcmds.PlotCourseCommand{} },
			combatAllowed: true,
			hyperspaceOK:  true,
		},
		"move": {
			make: func() common.Request { return &movementcmds.MoveCommand{} },
		},
		"trade": {
			make: func() common.Request { return &tradingcmds.TradeCommand{} },
		},
		"recharge_warp_power": {
			make: func() common.Request { return &tradingcmds.RechargeWarpPowerCommand{} },
		},
		"purchase_fighters": {
			make: func() common.Request { return &tradingcmds.PurchaseFightersCommand{} },
		},
		"ship_purchase": {
			make: func() common.Request { return &tradingcmds.ShipPurchaseCommand{} },
		},
		"transfer_credits": {
			make: func() common.Request { return &transfercmds.TransferCreditsCommand{} },
		},
		"transfer_warp_power": {
			make: func() common.Request { return &transfercmds.TransferWarpPowerCommand{} },
		},
		"bank_transfer": {
			make: func() common.Request { return &transfercmds.BankTransferCommand{} },
		},
		"dump_cargo": {
			make: func() common.Request { return &salvagecmds.DumpCargoCommand{} },
		},
		"salvage_collect": {
			make: func() common.Request { return &salvagecmds.SalvageCollectCommand{} },
		},
		"combat_initiate": {
			make:          func() common.Request { return &combatcmds.CombatInitiateCommand{} },
			combatAllowed: true,
		},
		"combat_action": {
			make:          func() common.Request { return &combatcmds.CombatActionCommand{} },
			combatAllowed: true,
		},
		"combat_leave_fighters": {
			make: func() common.Request { return &garrisoncmds.LeaveFightersCommand{} },
		},
		"combat_collect_fighters": {
			make: func() common.Request { return &garrisoncmds.CollectFightersCommand{} },
		},
		"combat_set_garrison_mode": {
			make: func() common.Request { return &garrisoncmds.SetGarrisonModeCommand{} },
		},
		"corporation_create": {
			make: func() common.Request { return &corpcmds.CorporationCreateCommand{} },
		},
		"corporation_join": {
			make: func() common.Request { return &corpcmds.CorporationJoinCommand{} },
		},
		"corporation_leave": {
			make: func() common.Request { return &corpcmds.CorporationLeaveCommand{} },
		},
		"corporation_kick": {
			make: func() common.Request { return &corpcmds.CorporationKickCommand{} },
		},
		"corporation_disband": {
			make: func() common.Request { return &corpcmds.CorporationDisbandCommand{} },
		},
		"corporation_buy_ship": {
			make: func() common.Request { return &corpcmds.CorporationBuyShipCommand{} },
		},
		"corporation_regenerate_invite": {
			make: func() common.Request { return &corpcmds.CorporationRegenerateInviteCommand{} },
		},
		"send_chat": {
			make:          func() common.Request { return &chatcmds.SendChatCommand{} },
			combatAllowed: true,
			hyperspaceOK:  true,
		},
		"event_query": {
			make:          func() common.Request { return &admincmds.EventQueryCommand{} },
			ownerOrAdmin:  true,
			combatAllowed: true,
			hyperspaceOK:  true,
		},
		"test_reset": {
			make:        func() common.Request { return &admincmds.TestResetCommand{} },
			noCharacter: true,
			adminOnly:   true,
		},
	}
}
