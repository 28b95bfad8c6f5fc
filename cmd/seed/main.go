package main

import (
	"github.com/fishonary/catalog/internal/config"
	"github.com/fishonary/catalog/internal/db"
	"github.com/fishonary/catalog/internal/logger"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	gdb, err := db.Open(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	if err := db.EnsureSchema(gdb); err != nil {
		log.Error("failed to ensure schema", "err", err)
		return
	}

	if err := db.SeedDemoData(gdb, cfg.Seed.Users, cfg.Seed.CatchesPerUser); err != nil {
		log.Error("failed to seed", "err", err)
		return
	}

	log.Info("seeding completed", "users", cfg.Seed.Users, "catches_per_user", cfg.Seed.CatchesPerUser)
}
