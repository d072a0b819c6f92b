package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "tradewars"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "tradewars"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "tradewars.db"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.RateLimit.Requests == 0 {
		cfg.Server.RateLimit.Requests = 10
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 20
	}
	if cfg.Server.MaxMessageBytes == 0 {
		cfg.Server.MaxMessageBytes = 64 * 1024
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.PongTimeout == 0 {
		cfg.Server.PongTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// Game defaults
	if cfg.Game.RoundWindow == 0 {
		cfg.Game.RoundWindow = 15 * time.Second
	}
	if cfg.Game.DeadlinePollInterval == 0 {
		cfg.Game.DeadlinePollInterval = 1 * time.Second
	}
	if cfg.Game.SalvageTTL == 0 {
		cfg.Game.SalvageTTL = 10 * time.Minute
	}
	if cfg.Game.CorporationCreationCost == 0 {
		cfg.Game.CorporationCreationCost = 1000
	}
	if cfg.Game.FighterPrice == 0 {
		cfg.Game.FighterPrice = 10
	}
	if cfg.Game.WarpPowerPrice == 0 {
		cfg.Game.WarpPowerPrice = 2
	}
	if cfg.Game.WarpCostPerTurn == 0 {
		cfg.Game.WarpCostPerTurn = 5
	}
	if cfg.Game.StartingCredits == 0 {
		cfg.Game.StartingCredits = 1000
	}
	if cfg.Game.MaxCombatParticipants == 0 {
		cfg.Game.MaxCombatParticipants = 8
	}
	if cfg.Game.WorldSeed == 0 {
		cfg.Game.WorldSeed = 1
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
