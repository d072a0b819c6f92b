package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradewars-server/internal/adapters/gateway"
	"github.com/andrescamacho/tradewars-server/internal/adapters/metrics"
	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	appcombat "github.com/andrescamacho/tradewars-server/internal/application/combat"
	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/application/dispatch"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/locks"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/application/view"
	"github.com/andrescamacho/tradewars-server/internal/domain/combat"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/internal/infrastructure/config"
	"github.com/andrescamacho/tradewars-server/internal/infrastructure/database"
	"github.com/andrescamacho/tradewars-server/internal/infrastructure/logging"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "tradewars-server",
		Short: "Authoritative world server for the trade-and-combat simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: search ., ./configs, /etc/tradewars)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the world server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(configPath string) error {
	cfg := config.MustLoadConfig(configPath)
	logger := logging.New(&cfg.Logging)
	ctx := common.WithLogger(context.Background(), logger)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	characters := persistence.NewGormCharacterRepository(db)
	ships := persistence.NewGormShipRepository(db)
	ports := persistence.NewGormPortRepository(db)
	garrisons := persistence.NewGormGarrisonRepository(db)
	salvage := persistence.NewGormSalvageRepository(db)
	corporations := persistence.NewGormCorporationRepository(db)
	knowledge := persistence.NewGormKnowledgeRepository(db)
	eventLog := persistence.NewGormEventLog(db)
	resetter := persistence.NewGormResetter(db)

	// Reference data and live indexes
	universe := world.DefaultUniverse()
	catalog := world.DefaultCatalog()
	clock := shared.NewRealClock()
	index := sector.NewIndex()
	roster := appevents.NewRoster(index)
	hub := appevents.NewHub()
	collector := metrics.NewCollector(hub)
	bus := appevents.NewBus(clock, roster, hub, eventLog, collector)
	lockManager := locks.NewManager()

	rules := common.Rules{
		FighterPrice:            cfg.Game.FighterPrice,
		WarpPowerPrice:          cfg.Game.WarpPowerPrice,
		WarpCostPerTurn:         cfg.Game.WarpCostPerTurn,
		BankingSectorID:         cfg.Game.BankingSectorID,
		StartingSectorID:        cfg.Game.StartingSectorID,
		StartingCredits:         cfg.Game.StartingCredits,
		StartingShipType:        "merchant_cruiser",
		CorporationCreationCost: cfg.Game.CorporationCreationCost,
		SalvageTTL:              cfg.Game.SalvageTTL,
		AdminPassword:           cfg.Game.AdminPassword,
		EnableTestCommands:      cfg.Game.EnableTestCommands,
	}

	builder := view.NewBuilder(universe, catalog, index, characters, ships, ports, salvage)

	// Combat engine
	resolver := combat.NewResolver(combat.DefaultTuning(), combat.NewSeededRoller(int64(cfg.Game.WorldSeed)))
	combatManager := appcombat.NewManager(
		appcombat.Settings{
			RoundWindow:     cfg.Game.RoundWindow,
			MaxParticipants: cfg.Game.MaxCombatParticipants,
			SalvageTTL:      cfg.Game.SalvageTTL,
			WarpCostPerTurn: cfg.Game.WarpCostPerTurn,
		},
		lockManager, resolver, clock, bus, index, universe, catalog,
		characters, ships, garrisons, salvage,
	)
	scheduler := appcombat.NewScheduler(combatManager, salvage, index, clock, cfg.Game.DeadlinePollInterval)

	mediator := common.NewMediator()
	if err := registerHandlers(
		mediator, rules, clock, bus, lockManager, index, roster, builder,
		combatManager, scheduler, hub, universe, catalog, resetter, eventLog,
		characters, ships, ports, garrisons, salvage, corporations, knowledge,
	); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(
		mediator, lockManager, combatManager, bus,
		characters, ships, corporations, cfg.Game.AdminPassword,
	)

	if err := bootstrapWorld(ctx, universe, ports, characters, garrisons, salvage, index, roster); err != nil {
		return fmt.Errorf("failed to bootstrap world state: %w", err)
	}

	server := gateway.NewServer(&cfg.Server, logger, dispatcher, hub, collector, cfg.Game.AdminPassword)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scheduler.Start(runCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log("info", "shutting down", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gateway failed: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log("warn", "gateway shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	scheduler.Stop()
	hub.Drain()
	return nil
}

// bootstrapWorld seeds ports for the static topology and rebuilds the
// in-memory indexes from the durable store after a restart.
func bootstrapWorld(
	ctx context.Context,
	universe *world.Universe,
	ports world.PortRepository,
	characters world.CharacterRepository,
	garrisons world.GarrisonRepository,
	salvage world.SalvageRepository,
	index *sector.Index,
	roster *appevents.Roster,
) error {
	all, err := characters.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, character := range all {
		index.SetCharacter(character.ID, character.SectorID, character.InHyperspace)
		if character.CorporationID != "" {
			roster.SetMembership(character.CorporationID, character.ID)
		}
	}

	// The universe is small; walking every sector keeps the repository
	// interfaces free of list-all methods they otherwise never need.
	for _, id := range universe.SectorIDs() {
		topo, err := universe.Sector(id)
		if err != nil {
			return err
		}
		if topo.HasPort {
			if _, err := ports.FindBySector(ctx, id); err != nil {
				var notFound *shared.NotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
				code := "SBB"
				if id%2 == 1 {
					code = "BSS"
				}
				if err := ports.Save(ctx, world.NewPort(id, code, 100)); err != nil {
					return err
				}
			}
		}
		if garrison, err := garrisons.FindBySector(ctx, id); err == nil {
			index.SetGarrison(garrison)
		}
		containers, err := salvage.ListBySector(ctx, id)
		if err != nil {
			return err
		}
		for _, container := range containers {
			index.AddSalvage(id, container.ID)
		}
	}
	return nil
}
