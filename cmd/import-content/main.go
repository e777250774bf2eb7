// Package main seeds the enemies table from a YAML bestiary file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/duskfall/adventure/internal/config"
	"github.com/duskfall/adventure/internal/game/encounter"
	"github.com/duskfall/adventure/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	source := flag.String("source", "", "path to bestiary YAML file")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content -source <bestiary.yaml> [-config <path>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	enemies, err := encounter.LoadEnemiesFromFile(*source)
	if err != nil {
		log.Fatalf("loading bestiary: %v", err)
	}
	if len(enemies) == 0 {
		log.Fatalf("bestiary %s holds no enemies", *source)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	start := time.Now()
	repo := postgres.NewEnemyRepository(pool.DB())
	for _, enemy := range enemies {
		if err := repo.Upsert(ctx, enemy); err != nil {
			log.Fatalf("importing enemy %q: %v", enemy.Name, err)
		}
	}
	fmt.Printf("imported %d enemies in %s\n", len(enemies), time.Since(start).Round(time.Millisecond))
}
