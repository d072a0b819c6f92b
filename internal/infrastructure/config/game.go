package config

import "time"

// GameConfig holds the simulation rules the server runs with.
type GameConfig struct {
	// Deadline for each combat round
	RoundWindow time.Duration `mapstructure:"round_window"`

	// How often the scheduler checks for expired round deadlines and salvage
	DeadlinePollInterval time.Duration `mapstructure:"deadline_poll_interval"`

	// Expiry for salvage containers
	SalvageTTL time.Duration `mapstructure:"salvage_ttl"`

	// Credits required to found a corporation
	CorporationCreationCost int `mapstructure:"corporation_creation_cost"`

	// Per-unit purchase prices at the home sector
	FighterPrice   int `mapstructure:"fighter_price"`
	WarpPowerPrice int `mapstructure:"warp_power_price"`

	// Warp power burned per warp turn when moving or fleeing
	WarpCostPerTurn int `mapstructure:"warp_cost_per_turn"`

	// Sector where bank_transfer, ship_purchase and recharges are allowed
	BankingSectorID int `mapstructure:"banking_sector_id"`

	// Sector and balance newly joined characters start with
	StartingSectorID int `mapstructure:"starting_sector_id"`
	StartingCredits  int `mapstructure:"starting_credits"`

	// Safety cap on combatants in one sector encounter
	MaxCombatParticipants int `mapstructure:"max_combat_participants" validate:"min=2"`

	// Seed mixed into the combat RNG. Fixed per world so replays agree.
	WorldSeed uint64 `mapstructure:"world_seed"`

	// Secret validated against the admin_password RPC field
	AdminPassword string `mapstructure:"admin_password"`

	// Enables the test_reset admin command. Never set in production.
	EnableTestCommands bool `mapstructure:"enable_test_commands"`
}
