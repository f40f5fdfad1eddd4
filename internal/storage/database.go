package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/nsac-scraper/internal/config"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know the bindvar style of.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Database struct {
	*sqlx.DB
}

// NewDatabase connects to Postgres or SQLite depending on backend.
func NewDatabase(backend string, cfg *config.DatabaseConfig) (*Database, error) {
	var db *sqlx.DB
	var err error

	switch backend {
	case "postgres":
		db, err = sqlx.Connect("postgres", cfg.DSN())
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite", cfg.SQLitePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	default:
		return nil, fmt.Errorf("unsupported database backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if backend == "sqlite" {
		// One writer at a time keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	return &Database{DB: db}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) RunMigrations() error {
	serial, timestamp := "BIGSERIAL PRIMARY KEY", "TIMESTAMP WITH TIME ZONE"
	if d.DriverName() == "sqlite" {
		// modernc only decodes time.Time for columns declared exactly TIMESTAMP.
		serial, timestamp = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id ` + serial + `,
			taken_at TEXT NOT NULL,
			challenges TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history_log (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS latest_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			taken_at TEXT NOT NULL,
			challenges TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scrape_runs (
			id VARCHAR(36) PRIMARY KEY,
			status VARCHAR(20) NOT NULL,
			triggered_by VARCHAR(100) NOT NULL,
			started_at ` + timestamp + ` NOT NULL,
			finished_at ` + timestamp + `,
			duration_ms BIGINT,
			challenge_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			snapshot_timestamp TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := d.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
