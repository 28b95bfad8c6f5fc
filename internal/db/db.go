package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fishonary/catalog/internal/config"
	caterr "github.com/fishonary/catalog/internal/errors"
)

// Bootstrap identity seeded on first start, before any sign-in resolves.
const (
	BootstrapUserName  = "fisherman"
	BootstrapUserEmail = "fishonary@gmail.com"
)

// Open opens (creating if absent) the on-device database file and returns a
// live handle. The handle is constructed once at startup, injected into the
// catalog store, and lives for the process lifetime; it is never closed
// during normal operation.
func Open(cfg *config.Config) (*gorm.DB, error) {
	path := cfg.DB.Path
	if !isMemoryPath(path) {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, caterr.StorageUnavailable("failed to create database directory", err)
			}
		}
	}

	gdb, err := gorm.Open(sqlite.Open(dsnFor(path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, caterr.StorageUnavailable("failed to open database", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, caterr.StorageUnavailable("failed to access connection pool", err)
	}

	// Single connection: the app is a single logical writer and the DSN
	// pragmas are per-connection state.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, caterr.StorageUnavailable("database file is not accessible", err)
	}

	return gdb, nil
}

// DSN notes:
//   - _fk=1 enforces foreign keys, required for the writer ON DELETE CASCADE
//   - _journal_mode=WAL enables the write-ahead log
//   - _busy_timeout sets a lock wait
func dsnFor(path string) string {
	const params = "_fk=1&_journal_mode=WAL&_busy_timeout=5000"
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + params
		}
		return path + "?" + params
	}
	return fmt.Sprintf("file:%s?%s", filepath.Clean(path), params)
}

func isMemoryPath(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL DEFAULT 'Fisher',
		email            TEXT NOT NULL UNIQUE,
		photo            TEXT,
		fish_ids         TEXT NOT NULL DEFAULT '[]',
		is_subscriber    INTEGER NOT NULL DEFAULT 0,
		subscribe_at     TEXT,
		subscribe_period INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS fish (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL DEFAULT '',
		type          TEXT NOT NULL,
		date          TEXT NOT NULL,
		latitude      REAL NOT NULL,
		longitude     REAL NOT NULL,
		location_name TEXT NOT NULL DEFAULT '',
		photo         TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		writer        INTEGER NOT NULL REFERENCES users(id) ON UPDATE CASCADE ON DELETE CASCADE,
		notes         TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fish_writer ON fish (writer)`,
	`CREATE INDEX IF NOT EXISTS idx_fish_date ON fish (date)`,
}

// expectedColumns is the shape EnsureSchema accepts for a pre-existing
// table. Extra columns are tolerated; a missing column or a different type
// affinity is an incompatible schema from a prior version.
var expectedColumns = map[string]map[string]string{
	"users": {
		"id":               "INTEGER",
		"name":             "TEXT",
		"email":            "TEXT",
		"photo":            "TEXT",
		"fish_ids":         "TEXT",
		"is_subscriber":    "INTEGER",
		"subscribe_at":     "TEXT",
		"subscribe_period": "INTEGER",
	},
	"fish": {
		"id":            "INTEGER",
		"name":          "TEXT",
		"type":          "TEXT",
		"date":          "TEXT",
		"latitude":      "REAL",
		"longitude":     "REAL",
		"location_name": "TEXT",
		"photo":         "TEXT",
		"created_at":    "TEXT",
		"writer":        "INTEGER",
		"notes":         "TEXT",
	},
}

// EnsureSchema creates the user and fish tables if absent and seeds the
// bootstrap identity if no row carries its email. Safe to call on every app
// start. A pre-existing table with an incompatible shape fails with a schema
// error; no automatic migration is attempted.
func EnsureSchema(gdb *gorm.DB) error {
	for table := range expectedColumns {
		if err := checkTableCompat(gdb, table); err != nil {
			return err
		}
	}

	for _, ddl := range schemaDDL {
		if err := gdb.Exec(ddl).Error; err != nil {
			return caterr.Schema("failed to create tables", err)
		}
	}

	seed := User{Name: BootstrapUserName, Email: BootstrapUserEmail, FishIDs: FishIDs{}}
	err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return caterr.Schema("failed to seed bootstrap user", err)
	}

	return nil
}

func checkTableCompat(gdb *gorm.DB, table string) error {
	m := gdb.Migrator()
	if !m.HasTable(table) {
		return nil
	}

	cols, err := m.ColumnTypes(table)
	if err != nil {
		return caterr.Schema(fmt.Sprintf("failed to inspect table %s", table), err)
	}

	got := make(map[string]string, len(cols))
	for _, c := range cols {
		got[strings.ToLower(c.Name())] = strings.ToUpper(c.DatabaseTypeName())
	}

	for name, want := range expectedColumns[table] {
		have, ok := got[name]
		if !ok {
			return caterr.Schema(fmt.Sprintf("table %s is missing column %s", table, name), nil)
		}
		if have != want {
			return caterr.Schema(fmt.Sprintf("table %s column %s has type %s, want %s", table, name, have, want), nil)
		}
	}

	return nil
}

// DropSchema drops both tables. Used only by maintenance tooling, never by
// normal app flow.
func DropSchema(gdb *gorm.DB) error {
	// fish first: its writer column references users
	if err := gdb.Exec(`DROP TABLE IF EXISTS fish`).Error; err != nil {
		return caterr.Schema("failed to drop fish table", err)
	}
	if err := gdb.Exec(`DROP TABLE IF EXISTS users`).Error; err != nil {
		return caterr.Schema("failed to drop users table", err)
	}
	return nil
}

// TableNames lists the user tables in the database file.
func TableNames(gdb *gorm.DB) ([]string, error) {
	var names []string
	err := gdb.Raw(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
	).Scan(&names).Error
	if err != nil {
		return nil, caterr.Map(err)
	}
	return names, nil
}
