package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// schema holds the feature tables. Zone rings are stored as JSON
// arrays of {lat, lng} objects.
const schema = `
CREATE TABLE IF NOT EXISTS feature_points (
    assessment_id VARCHAR NOT NULL,
    layer         VARCHAR NOT NULL,
    point_id      VARCHAR NOT NULL,
    lat           DOUBLE NOT NULL,
    lng           DOUBLE NOT NULL,
    category      VARCHAR,
    severity      VARCHAR,
    title         VARCHAR,
    description   VARCHAR
);
CREATE TABLE IF NOT EXISTS feature_zones (
    assessment_id VARCHAR NOT NULL,
    seq           INTEGER NOT NULL,
    ring          VARCHAR NOT NULL,
    stroke        VARCHAR,
    fill          VARCHAR,
    name          VARCHAR,
    description   VARCHAR,
    level         VARCHAR
);
CREATE TABLE IF NOT EXISTS heat_samples (
    assessment_id VARCHAR NOT NULL,
    lat           DOUBLE NOT NULL,
    lng           DOUBLE NOT NULL,
    intensity     DOUBLE NOT NULL
);
`

// Get returns the singleton DuckDB connection, creating the database
// file and the feature schema on first use.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		if _, err := instance.Exec(schema); err != nil {
			initErr = fmt.Errorf("failed to initialize schema: %w", err)
			instance.Close()
			instance = nil
		}
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
