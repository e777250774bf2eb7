// Package main provides the adventure game server. It wires together
// configuration, PostgreSQL, the Redis timer store, the map atlas, and the
// player/battle/encounter subsystems.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/config"
	"github.com/duskfall/adventure/internal/game/atlas"
	"github.com/duskfall/adventure/internal/game/battle"
	"github.com/duskfall/adventure/internal/game/encounter"
	"github.com/duskfall/adventure/internal/game/player"
	"github.com/duskfall/adventure/internal/game/service"
	"github.com/duskfall/adventure/internal/observability"
	"github.com/duskfall/adventure/internal/server"
	"github.com/duskfall/adventure/internal/storage/postgres"
	"github.com/duskfall/adventure/internal/storage/redis"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting adventure game server")

	// Connect to PostgreSQL
	ctx := context.Background()
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	// Connect to the Redis timer store
	store, err := redis.NewClient(ctx, cfg.Redis, observability.Subsystem(logger, "redis"))
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}

	// Load the map atlas
	nodes, err := atlas.LoadNodesFromDir(cfg.Game.MapDir, observability.Subsystem(logger, "atlas"))
	if err != nil {
		logger.Fatal("loading maps", zap.Error(err))
	}
	world := atlas.New(nodes, cfg.Game.TravelDivisor, observability.Subsystem(logger, "atlas"))
	if _, ok := world.Get(cfg.Game.HomeMapID); !ok {
		logger.Fatal("home map node missing from atlas", zap.Int("home", cfg.Game.HomeMapID))
	}
	logger.Info("atlas loaded", zap.Int("nodes", world.Len()))

	// Load encounter content
	enemies, err := postgres.NewEnemyRepository(pool.DB()).LoadAll(ctx)
	if err != nil {
		logger.Fatal("loading enemies", zap.Error(err))
	}
	logger.Info("enemies loaded", zap.Int("species", len(enemies)))

	// Build game subsystems
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	clock := player.NewClock(store)
	actions := player.NewActions(world, clock, observability.Subsystem(logger, "actions"))
	players := postgres.NewPlayerRepository(pool.DB())
	manager := player.NewManager(players, actions, world, rng,
		cfg.Game.HomeMapID, cfg.Game.FlushInterval, observability.Subsystem(logger, "players"))
	if err := manager.Load(ctx); err != nil {
		logger.Fatal("loading players", zap.Error(err))
	}

	encounters := encounter.NewSystem(encounter.NewTable(enemies), rng,
		cfg.Game.HomeMapID, observability.Subsystem(logger, "encounters"))
	battles := battle.NewRegistry()

	// The command service is the surface a chat transport drives.
	ignored := player.NewIgnoreList(store, "adventure:ignored")
	game := service.New(manager, encounters, battles, ignored, rng,
		cfg.Game.MoveTimeout, cfg.Game.SurrenderTimeout, observability.Subsystem(logger, "service"))
	logger.Info("command service ready", zap.Int("players", len(game.Players().Snapshot())))

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			// Pool is already connected; just keep it alive
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	lifecycle.Add("redis", &server.FuncService{
		StartFn: func() error {
			select {}
		},
		StopFn: func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing redis", zap.Error(err))
			}
		},
	})

	lifecycle.Add("player-flush", manager)

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
