// catalogctl is the maintenance tool for the on-device catalog file. Normal
// app flow never drops the schema; this is the one place that does.
package main

import (
	"flag"
	"strings"

	"github.com/fishonary/catalog/internal/config"
	"github.com/fishonary/catalog/internal/db"
	"github.com/fishonary/catalog/internal/logger"
)

func main() {
	initSchema := flag.Bool("init", false, "create the schema and seed the bootstrap user")
	drop := flag.Bool("drop", false, "drop the user and fish tables")
	tables := flag.Bool("tables", false, "list tables in the database file")
	flag.Parse()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	gdb, err := db.Open(cfg)
	if err != nil {
		log.Error("failed to open db", "err", err)
		return
	}

	switch {
	case *drop:
		if err := db.DropSchema(gdb); err != nil {
			log.Error("failed to drop schema", "err", err)
			return
		}
		log.Info("schema dropped")
	case *initSchema:
		if err := db.EnsureSchema(gdb); err != nil {
			log.Error("failed to ensure schema", "err", err)
			return
		}
		log.Info("schema ready")
	case *tables:
		names, err := db.TableNames(gdb)
		if err != nil {
			log.Error("failed to list tables", "err", err)
			return
		}
		log.Info("tables", "names", strings.Join(names, ", "))
	default:
		flag.Usage()
	}
}
