package events

// Canonical event names. Every name has a fixed payload schema built by
// the helpers in payloads.go; handlers never assemble payload maps inline.
const (
	StatusSnapshot = "status.snapshot"
	StatusUpdate   = "status.update"

	MapKnowledge = "map.knowledge"
	MapLocal     = "map.local"
	MapRegion    = "map.region"
	CoursePlot   = "course.plot"

	MovementStart    = "movement.start"
	MovementComplete = "movement.complete"
	SectorUpdate     = "sector.update"
	CharacterMoved   = "character.moved"

	TradeExecuted   = "trade.executed"
	PortUpdate      = "port.update"
	WarpPurchase    = "warp.purchase"
	WarpTransfer    = "warp.transfer"
	CreditsTransfer = "credits.transfer"
	BankTransaction = "bank.transaction"
	FighterPurchase = "fighter.purchase"

	GarrisonDeployed    = "garrison.deployed"
	GarrisonCollected   = "garrison.collected"
	GarrisonModeChanged = "garrison.mode_changed"
	GarrisonCombatAlert = "garrison.combat_alert"

	SalvageCreated   = "salvage.created"
	SalvageCollected = "salvage.collected"

	CombatRoundWaiting  = "combat.round_waiting"
	CombatRoundResolved = "combat.round_resolved"
	CombatEnded         = "combat.ended"
	CombatRefresh       = "combat.refresh"

	CorporationCreated               = "corporation.created"
	CorporationMemberJoined          = "corporation.member_joined"
	CorporationMemberLeft            = "corporation.member_left"
	CorporationMemberKicked          = "corporation.member_kicked"
	CorporationDisbanded             = "corporation.disbanded"
	CorporationShipPurchased         = "corporation.ship_purchased"
	CorporationShipsAbandoned        = "corporation.ships_abandoned"
	CorporationInviteCodeRegenerated = "corporation.invite_code_regenerated"

	ShipTradedIn = "ship.traded_in"
	ChatMessage  = "chat.message"
	Error        = "error"
)
