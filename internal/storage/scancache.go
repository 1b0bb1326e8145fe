package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ScanKey identifies one scan: the archive as it is on disk and the
// settings it was checked against.
type ScanKey struct {
	Path      string
	Size      int64
	ModTime   int64 // UnixNano
	MaxFormat int
	Variant   string
}

// KeyFor stats path and builds its key.
func KeyFor(path string, maxFormat int, variant string) (ScanKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ScanKey{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ScanKey{}, err
	}
	return ScanKey{
		Path:      abs,
		Size:      info.Size(),
		ModTime:   info.ModTime().UnixNano(),
		MaxFormat: maxFormat,
		Variant:   variant,
	}, nil
}

// Lookup returns the cached outcome for key. A row for the same path whose
// size or modification time differs is stale and reported as a miss.
func (db *ScanCache) Lookup(key ScanKey) (exceeds bool, found bool, err error) {
	var size, modTime int64
	var flag int
	err = db.conn.QueryRow(`
		SELECT size, mod_time, exceeds
		FROM scan_results
		WHERE path = ? AND max_format = ? AND variant = ?
	`, key.Path, key.MaxFormat, key.Variant).Scan(&size, &modTime, &flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("scan cache lookup failed: %w", err)
	}
	if size != key.Size || modTime != key.ModTime {
		return false, false, nil
	}
	return flag != 0, true, nil
}

// Store records the outcome for key, replacing any earlier one.
func (db *ScanCache) Store(key ScanKey, exceeds bool) error {
	flag := 0
	if exceeds {
		flag = 1
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO scan_results (path, size, mod_time, max_format, variant, exceeds, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key.Path, key.Size, key.ModTime, key.MaxFormat, key.Variant, flag, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("scan cache store failed: %w", err)
	}
	return nil
}

// Clear removes every cached outcome and returns how many were removed.
func (db *ScanCache) Clear() (int64, error) {
	res, err := db.conn.Exec("DELETE FROM scan_results")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ArchiveScanner is implemented by classfile.Scanner.
type ArchiveScanner interface {
	Scan(path string, maxFormat int) (bool, error)
}

// CachingScanner consults the cache before delegating to its inner scanner.
// Only successful scans are stored. Cache errors are logged and fall back
// to scanning.
type CachingScanner struct {
	inner   ArchiveScanner
	db      *ScanCache
	variant string
}

// NewCachingScanner wraps inner. variant distinguishes scanner settings
// that change outcomes, so results for one never answer the other.
func NewCachingScanner(inner ArchiveScanner, db *ScanCache, variant string) *CachingScanner {
	return &CachingScanner{inner: inner, db: db, variant: variant}
}

func (s *CachingScanner) Scan(path string, maxFormat int) (bool, error) {
	key, err := KeyFor(path, maxFormat, s.variant)
	if err != nil {
		// Let the inner scanner report the unreadable file.
		return s.inner.Scan(path, maxFormat)
	}

	exceeds, found, err := s.db.Lookup(key)
	if err != nil {
		s.db.logger.Warn("Scan cache unavailable", "error", err)
	} else if found {
		s.db.logger.Debug("Scan cache hit", "path", key.Path, "exceeds", exceeds)
		return exceeds, nil
	}

	exceeds, err = s.inner.Scan(path, maxFormat)
	if err != nil {
		return false, err
	}
	if err := s.db.Store(key, exceeds); err != nil {
		s.db.logger.Warn("Failed to cache scan result", "path", key.Path, "error", err)
	}
	return exceeds, nil
}
