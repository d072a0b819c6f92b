package common

import "time"

// Rules are the gameplay constants handlers consult. They are loaded once
// from configuration at startup and never mutated.
type Rules struct {
	FighterPrice            int
	WarpPowerPrice          int
	WarpCostPerTurn         int
	BankingSectorID         int
	StartingSectorID        int
	StartingCredits         int
	StartingShipType        string
	CorporationCreationCost int
	SalvageTTL              time.Duration
	AdminPassword           string
	EnableTestCommands      bool
}
