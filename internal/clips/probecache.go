package clips

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"automix/internal/logging"
	"automix/internal/media/graph"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current probe cache schema version. A mismatching
// cache is discarded and rebuilt since every row can be re-probed.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ProbeCache persists probe results in SQLite.
type ProbeCache struct {
	db   *sql.DB
	path string
}

// Fingerprint identifies one version of a source file.
type Fingerprint struct {
	Location string
	Size     int64
	ModTime  time.Time
}

// FingerprintFile stats location and returns its fingerprint.
func FingerprintFile(location string) (Fingerprint, error) {
	absolute, err := filepath.Abs(location)
	if err != nil {
		return Fingerprint{}, err
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Location: absolute, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// OpenProbeCache opens or creates the cache database at path.
func OpenProbeCache(ctx context.Context, path string) (*ProbeCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("probe cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create probe cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &ProbeCache{db: db, path: path}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database location.
func (c *ProbeCache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *ProbeCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *ProbeCache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists > 0 {
		var version int
		err = c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
		if err == nil && version == schemaVersion {
			return nil
		}
		if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS probes; DROP TABLE IF EXISTS schema_version;"); err != nil {
			return fmt.Errorf("reset probe cache: %w", err)
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the cached probe for fp. A row whose size or modification
// time differs from fp is a miss.
func (c *ProbeCache) Lookup(ctx context.Context, fp Fingerprint) (graph.Probe, bool, error) {
	var (
		probe graph.Probe
		found bool
	)
	err := retryOnBusy(ctx, func() error {
		row := c.db.QueryRowContext(ctx,
			"SELECT duration_seconds, sample_rate FROM probes WHERE location = ? AND size_bytes = ? AND mtime_ns = ?",
			fp.Location, fp.Size, fp.ModTime.UnixNano(),
		)
		switch err := row.Scan(&probe.DurationSeconds, &probe.SampleRate); {
		case errors.Is(err, sql.ErrNoRows):
			found = false
			return nil
		case err != nil:
			return err
		default:
			found = true
			return nil
		}
	})
	if err != nil {
		return graph.Probe{}, false, fmt.Errorf("lookup probe %s: %w", fp.Location, err)
	}
	return probe, found, nil
}

// Store records probe for fp, replacing any previous row for the location.
func (c *ProbeCache) Store(ctx context.Context, fp Fingerprint, probe graph.Probe) error {
	err := retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO probes (location, size_bytes, mtime_ns, duration_seconds, sample_rate, probed_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(location) DO UPDATE SET
			   size_bytes = excluded.size_bytes,
			   mtime_ns = excluded.mtime_ns,
			   duration_seconds = excluded.duration_seconds,
			   sample_rate = excluded.sample_rate,
			   probed_at = excluded.probed_at`,
			fp.Location, fp.Size, fp.ModTime.UnixNano(), probe.DurationSeconds, probe.SampleRate,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("store probe %s: %w", fp.Location, err)
	}
	return nil
}

// Prune deletes rows for files that no longer exist and reports how many were removed.
func (c *ProbeCache) Prune(ctx context.Context) (int, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT location FROM probes")
	if err != nil {
		return 0, fmt.Errorf("list probes: %w", err)
	}
	var stale []string
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan probe: %w", err)
		}
		if _, statErr := os.Stat(location); errors.Is(statErr, os.ErrNotExist) {
			stale = append(stale, location)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, location := range stale {
		if err := retryOnBusy(ctx, func() error {
			_, err := c.db.ExecContext(ctx, "DELETE FROM probes WHERE location = ?", location)
			return err
		}); err != nil {
			return 0, fmt.Errorf("delete probe %s: %w", location, err)
		}
	}
	return len(stale), nil
}

// CachedProber consults a ProbeCache before delegating to another Prober.
// Cache failures are logged and never fail a probe.
type CachedProber struct {
	next   Prober
	cache  *ProbeCache
	logger *slog.Logger
}

// NewCachedProber wraps next with cache.
func NewCachedProber(next Prober, cache *ProbeCache, logger *slog.Logger) *CachedProber {
	return &CachedProber{
		next:   next,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "probecache"),
	}
}

// Probe implements Prober.
func (p *CachedProber) Probe(ctx context.Context, location string) (graph.Probe, error) {
	if p.cache == nil {
		return p.next.Probe(ctx, location)
	}
	fp, err := FingerprintFile(location)
	if err != nil {
		return p.next.Probe(ctx, location)
	}
	if probe, ok, err := p.cache.Lookup(ctx, fp); err != nil {
		p.warn("probe cache lookup failed", "probecache_lookup_failed", err)
	} else if ok {
		p.logger.Debug("probe cache hit", logging.String("location", fp.Location))
		return probe, nil
	}

	probe, err := p.next.Probe(ctx, location)
	if err != nil {
		return graph.Probe{}, err
	}
	if err := p.cache.Store(ctx, fp, probe); err != nil {
		p.warn("probe cache store failed", "probecache_store_failed", err)
	}
	return probe, nil
}

func (p *CachedProber) warn(msg, event string, err error) {
	p.logger.Warn(msg,
		logging.String(logging.FieldEventType, event),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete the probe cache file if this persists"),
		logging.String(logging.FieldImpact, "clips are probed with ffprobe instead"),
	)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
