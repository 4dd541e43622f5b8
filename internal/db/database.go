package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/shankarium/plm/internal/logging"
)

// ErrNotFound is returned when a row addressed by id does not exist
var ErrNotFound = errors.New("not found")

// Config holds database configuration
type Config struct {
	Driver Dialect
	// Path is the SQLite database file
	Path string
	// URL is a full PostgreSQL DSN; when empty the DSN is built from the fields below
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against either the pool or an open transaction
type Queries struct {
	conn    querier
	dialect Dialect
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.conn.ExecContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.conn.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.conn.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

// Database holds the connection pool
type Database struct {
	*Queries
	DB      *sql.DB
	Dialect Dialect
}

// NewDatabase opens the configured store with retry logic for serverless databases
func NewDatabase(cfg Config) (*Database, error) {
	return NewDatabaseWithRetry(cfg, 5, time.Second)
}

// NewDatabaseWithRetry opens the configured store with configurable retry logic
func NewDatabaseWithRetry(cfg Config, maxRetries int, initialDelay time.Duration) (*Database, error) {
	log := logging.Logger()
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Info().Str("driver", string(cfg.Driver)).Int("attempt", attempt).Int("max_attempts", maxRetries).
			Msg("[PLM-DB] connection attempt")

		sqlDB, err := open(cfg)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = sqlDB.PingContext(ctx)
			cancel()
			if err == nil {
				log.Info().Int("attempt", attempt).Msg("[PLM-DB] connected")
				return &Database{
					Queries: &Queries{conn: sqlDB, dialect: cfg.Driver},
					DB:      sqlDB,
					Dialect: cfg.Driver,
				}, nil
			}
			sqlDB.Close()
			err = fmt.Errorf("failed to ping database: %w", err)
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("[PLM-DB] connection failed")
		if attempt < maxRetries {
			// Exponential backoff: 1s, 2s, 4s, 8s, 16s
			delay := initialDelay * time.Duration(1<<(attempt-1))
			log.Info().Dur("delay", delay).Msg("[PLM-DB] retrying")
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}

func open(cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DialectPostgres:
		return openPostgres(cfg)
	default:
		return openSQLite(cfg)
	}
}

func openSQLite(cfg Config) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "plm.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY between pooled connections.
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

func openPostgres(cfg Config) (*sql.DB, error) {
	dsn := cfg.URL
	if dsn == "" {
		host, port, user, name, sslmode := cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "5432"
		}
		if user == "" {
			user = "plm"
		}
		if name == "" {
			name = "plm"
		}
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s", host, port, user, name, sslmode)
		if cfg.Password != "" {
			dsn += " password=" + cfg.Password
		}
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	// Prefer simple protocol (no prepared statements) to be pooler friendly
	connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	sqlDB := stdlib.OpenDB(*connConfig)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return sqlDB, nil
}

// Close closes the database connection pool
func (db *Database) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// WithTx runs fn inside a transaction, committing only when fn succeeds
func (db *Database) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{conn: tx, dialect: db.Dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
