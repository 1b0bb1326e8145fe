// Package storage persists scan outcomes between runs in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"cffcheck/internal/slogutil"
)

const schemaVersion = 1

// ScanCache is a SQLite database of archive scan outcomes.
type ScanCache struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// OpenScanCache opens or creates the database at dbPath, creating parent
// directories and the schema as needed.
func OpenScanCache(dbPath string, logger *slog.Logger) (*ScanCache, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &ScanCache{conn: conn, logger: logger, dbPath: dbPath}
	if err := db.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *ScanCache) initializeSchema() error {
	var current int
	err := db.conn.QueryRow("PRAGMA user_version").Scan(&current)
	if err != nil {
		return err
	}
	if current == schemaVersion {
		return nil
	}

	db.logger.Debug("Creating scan cache schema", "path", db.dbPath, "from", current, "to", schemaVersion)
	schema := fmt.Sprintf(`
		DROP TABLE IF EXISTS scan_results;
		CREATE TABLE scan_results (
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			max_format INTEGER NOT NULL,
			variant TEXT NOT NULL,
			exceeds INTEGER NOT NULL,
			scanned_at TEXT NOT NULL,
			PRIMARY KEY (path, max_format, variant)
		);
		PRAGMA user_version = %d;
	`, schemaVersion)
	_, err = db.conn.Exec(schema)
	return err
}

// Path returns the database file location.
func (db *ScanCache) Path() string {
	return db.dbPath
}

// Close closes the database connection.
func (db *ScanCache) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
