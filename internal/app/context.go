package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/fishonary/catalog/internal/repository"
)

// AppContext holds shared dependencies (DB handle, catalog store, logger).
// Callers receive a reference to it instead of reaching into module-level
// state.
type AppContext struct {
	DB      *gorm.DB
	Catalog *repository.CatalogRepository
	Logger  *slog.Logger
}

// New creates a new AppContext.
func New(gdb *gorm.DB, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:      gdb,
		Catalog: repository.NewCatalogRepository(gdb, logger),
		Logger:  logger,
	}
}
