package relic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/syssam/relic/dialect"
	"github.com/syssam/relic/dialect/sql"
	"github.com/syssam/relic/schema"
)

// versionTable stores the single schema version row the coordinator
// checks on open.
const versionTable = "relic_schema_version"

// MigrateFunc upgrades the stored data from schema version from to
// version to. It runs inside the write scope that holds the version
// gate; a returned error rolls the whole upgrade back.
type MigrateFunc func(ctx context.Context, tx *Tx, from, to int) error

// Config configures a coordinator. Dialect and DSN are required; the
// rest has working defaults.
type Config struct {
	// Dialect is one of dialect.SQLite, dialect.MySQL, dialect.Postgres.
	Dialect string `yaml:"dialect"`
	// DSN is the engine data source name.
	DSN string `yaml:"dsn"`
	// MaxReaders caps the number of concurrent read scopes. Defaults
	// to 8. A write scope excludes all readers.
	MaxReaders int `yaml:"max_readers"`
	// ForeignKeys enables engine foreign-key enforcement. On SQLite it
	// is applied through the DSN; elsewhere enforcement is always on.
	ForeignKeys bool `yaml:"foreign_keys"`
	// SlowThreshold enables statement statistics and logs statements
	// slower than it. Zero disables collection.
	SlowThreshold Duration `yaml:"slow_threshold"`
	// Debug logs every statement before execution.
	Debug bool `yaml:"debug"`

	// Schema, when set, is created on first open and version-gated on
	// later opens.
	Schema *schema.Schema `yaml:"-"`
	// Migrate upgrades stored data when the stored version is older
	// than Schema.Version. Without it a version mismatch fails Open
	// with ErrMigrationRequired.
	Migrate MigrateFunc `yaml:"-"`
	// Logger receives coordinator and slow-query logs. Defaults to
	// slog.Default.
	Logger *slog.Logger `yaml:"-"`
	// Cache, when set, serves repeated read-scope queries. Entries are
	// invalidated per table when a write scope commits.
	Cache Cache `yaml:"-"`
}

// DB coordinates access to one embedded database. Read scopes run
// concurrently up to MaxReaders; a write scope runs exclusively.
// Admission is FIFO, so a waiting writer blocks later readers and
// cannot starve.
type DB struct {
	drv     dialect.Driver
	base    *sql.Driver
	stats   *sql.StatsDriver
	dialect string
	sem     *semaphore.Weighted
	weight  int64
	logger  *slog.Logger
	cache   Cache
	closed  atomic.Bool
	version int
}

// Open connects to the engine, applies or gates the declared schema,
// and returns a ready coordinator.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	switch cfg.Dialect {
	case dialect.SQLite, dialect.MySQL, dialect.Postgres:
	default:
		return nil, fmt.Errorf("relic: unsupported dialect %q", cfg.Dialect)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("relic: missing DSN")
	}
	readers := cfg.MaxReaders
	if readers <= 0 {
		readers = 8
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dsn := cfg.DSN
	if cfg.Dialect == dialect.SQLite && cfg.ForeignKeys {
		dsn = sqliteForeignKeysDSN(dsn)
	}
	base, err := sql.Open(cfg.Dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("relic: open %s: %w", cfg.Dialect, err)
	}
	var drv dialect.Driver = base
	var stats *sql.StatsDriver
	if cfg.SlowThreshold > 0 {
		stats = sql.NewStatsDriver(base,
			sql.WithSlowThreshold(time.Duration(cfg.SlowThreshold)),
			sql.WithSlowQueryLog(logger),
		)
		drv = stats
	}
	if cfg.Debug {
		drv = dialect.Debug(drv, func(_ context.Context, v ...any) {
			logger.Debug("statement", "op", v)
		})
	}
	db := &DB{
		drv:     drv,
		base:    base,
		stats:   stats,
		dialect: cfg.Dialect,
		sem:     semaphore.NewWeighted(int64(readers)),
		weight:  int64(readers),
		logger:  logger,
		cache:   cfg.Cache,
	}
	if cfg.Schema != nil {
		if err := cfg.Schema.Validate(); err != nil {
			base.Close()
			return nil, err
		}
		db.version = cfg.Schema.Version
		if err := db.initSchema(ctx, cfg); err != nil {
			base.Close()
			return nil, err
		}
	}
	return db, nil
}

// sqliteForeignKeysDSN appends the modernc.org/sqlite pragma parameter
// enabling foreign-key enforcement on every connection.
func sqliteForeignKeysDSN(dsn string) string {
	const pragma = "_pragma=foreign_keys(1)"
	if strings.Contains(dsn, pragma) {
		return dsn
	}
	if strings.ContainsRune(dsn, '?') {
		return dsn + "&" + pragma
	}
	return dsn + "?" + pragma
}

func (db *DB) initSchema(ctx context.Context, cfg Config) error {
	return db.Transaction(ctx, func(tx *Tx) error {
		if err := tx.execRaw(ctx, versionTableDDL(db.dialect)); err != nil {
			return fmt.Errorf("relic: create version table: %w", err)
		}
		stored, err := storedVersion(ctx, tx)
		if err != nil {
			return err
		}
		desired := cfg.Schema.Version
		switch {
		case stored == 0:
			stmts, err := cfg.Schema.CreateSQL(db.dialect)
			if err != nil {
				return err
			}
			for _, stmt := range stmts {
				if err := tx.execRaw(ctx, stmt); err != nil {
					return fmt.Errorf("relic: apply schema: %w", err)
				}
			}
			if err := tx.execRaw(ctx, "INSERT INTO "+versionTable+" (version) VALUES ("+fmt.Sprint(desired)+")"); err != nil {
				return err
			}
			db.logger.Info("schema created", "dialect", db.dialect, "version", desired)
		case stored == desired:
		case stored < desired:
			if cfg.Migrate == nil {
				return fmt.Errorf("%w: stored %d, declared %d", ErrMigrationRequired, stored, desired)
			}
			if err := cfg.Migrate(ctx, tx, stored, desired); err != nil {
				return fmt.Errorf("relic: migrate %d -> %d: %w", stored, desired, err)
			}
			if err := tx.execRaw(ctx, "UPDATE "+versionTable+" SET version = "+fmt.Sprint(desired)); err != nil {
				return err
			}
			db.logger.Info("schema migrated", "from", stored, "to", desired)
		default:
			return fmt.Errorf("relic: stored schema version %d is newer than declared %d", stored, desired)
		}
		return nil
	})
}

func versionTableDDL(d string) string {
	typ := "BIGINT"
	if d == dialect.SQLite {
		typ = "INTEGER"
	}
	return "CREATE TABLE IF NOT EXISTS " + versionTable + " (version " + typ + " NOT NULL)"
}

func storedVersion(ctx context.Context, tx *Tx) (int, error) {
	rows, err := tx.queryRaw(ctx, "SELECT version FROM "+versionTable)
	if err != nil {
		return 0, fmt.Errorf("relic: read schema version: %w", err)
	}
	defer rows.Close()
	var version int
	if rows.Next() {
		if err := rows.Scan(&version); err != nil {
			return 0, err
		}
	}
	return version, rows.Err()
}

// Builder returns a statement builder pinned to the coordinator's
// dialect.
func (db *DB) Builder() *sql.DialectBuilder {
	return sql.Dialect(db.dialect)
}

// Dialect returns the coordinator's dialect name.
func (db *DB) Dialect() string { return db.dialect }

// SchemaVersion returns the declared schema version, or zero when no
// schema was configured.
func (db *DB) SchemaVersion() int { return db.version }

// Stats returns the statement statistics, or nil when collection is
// disabled.
func (db *DB) Stats() *sql.QueryStats {
	if db.stats == nil {
		return nil
	}
	return db.stats.QueryStats()
}

// Transaction runs fn inside an exclusive write scope. The scope's
// engine transaction commits only when fn returns nil; an error or a
// panic rolls it back (the panic is re-raised). On commit, cache
// entries of the touched tables are invalidated.
func (db *DB) Transaction(ctx context.Context, fn func(*Tx) error) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.sem.Acquire(ctx, db.weight); err != nil {
		return err
	}
	defer db.sem.Release(db.weight)
	if db.closed.Load() {
		return ErrClosed
	}
	dtx, err := db.drv.Tx(ctx)
	if err != nil {
		return err
	}
	tx := &Tx{db: db, conn: dtx, writable: true, touched: make(map[string]bool)}
	committed := false
	defer func() {
		if !committed {
			dtx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := dtx.Commit(); err != nil {
		return err
	}
	committed = true
	db.invalidate(tx.touched)
	return nil
}

// Read runs fn inside a shared read scope. Up to MaxReaders read scopes
// run concurrently; none overlaps a write scope. Write statements
// inside fn fail with ErrReadOnly.
func (db *DB) Read(ctx context.Context, fn func(*Tx) error) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer db.sem.Release(1)
	if db.closed.Load() {
		return ErrClosed
	}
	return fn(&Tx{db: db, conn: db.drv, writable: false})
}

func (db *DB) invalidate(touched map[string]bool) {
	if db.cache == nil {
		return
	}
	for table := range touched {
		db.cache.DeletePrefix(tablePrefix(table))
	}
}

// Close marks the coordinator closed, waits for active scopes to
// finish, and closes the engine connection. Scopes requested after
// Close fail with ErrClosed.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	// Draining: acquiring the full weight waits out every live scope.
	if err := db.sem.Acquire(context.Background(), db.weight); err != nil {
		return err
	}
	db.sem.Release(db.weight)
	return db.base.Close()
}
