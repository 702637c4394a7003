// Package store persists the vehicle registry and the fuel log in SQL.
// SQLite (modernc, pure Go) and PostgreSQL (pgx) share one schema; queries
// are written with ? placeholders and rebound for PostgreSQL.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/fleetcare/core/fleet"
)

// Config selects the database. Driver is "memory", "sqlite" or "postgres".
type Config struct {
	Driver string `json:"driver"`
	// Path is the SQLite database file.
	Path string `json:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `json:"dsn"`
}

// SetDefaults keeps data in memory.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "memory"
	}
	if c.Driver == "sqlite" && c.Path == "" {
		c.Path = "fleetcare.db"
	}
}

// Validate checks the driver and its connection settings.
func (c Config) Validate() error {
	switch c.Driver {
	case "memory", "sqlite":
		return nil
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("store: postgres requires a dsn")
		}
		return nil
	}
	return fmt.Errorf("store: unsupported driver %q", c.Driver)
}

// DB is a SQL-backed fleet.Store.
type DB struct {
	*sql.DB
	driver string
}

var _ fleet.Store = (*DB)(nil)

// New returns the store described by cfg. The memory driver returns a
// fleet.MemoryStore.
func New(cfg Config) (fleet.Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == "memory" {
		return fleet.NewMemoryStore(), nil
	}
	return Open(cfg)
}

// Open connects to a SQL database and applies the schema.
func Open(cfg Config) (*DB, error) {
	cfg.SetDefaults()
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg.Path)
	case "postgres":
		return openPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func openSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := &DB{DB: sqlDB, driver: "sqlite"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := &DB{DB: sqlDB, driver: "postgres"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}

func (db *DB) Driver() string { return db.driver }

// Q rewrites ? placeholders for PostgreSQL and passes through for SQLite.
func (db *DB) Q(query string) string {
	if db.driver == "postgres" {
		return Rebind(query)
	}
	return query
}

func (db *DB) migrate() error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
