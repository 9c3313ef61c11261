// Package db provides PostgreSQL persistence for catalogue tracks and video
// analyses. Tracks are keyed by their Spotify ID; every bucket analysis is
// stored as a new run so older runs stay readable.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

type options struct {
	migrate  bool
	maxConns int32
	log      logger.Logger
}

// Option configures New.
type Option func(*options)

// WithMigrate applies the schema once the pool is reachable.
func WithMigrate() Option {
	return func(o *options) {
		o.migrate = true
	}
}

// WithMaxConns caps the pool size. Non-positive values keep the pgx default.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// poolConfig parses the URL and applies the pool-level options.
func poolConfig(databaseURL string, o *options) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if o.maxConns > 0 {
		cfg.MaxConns = o.maxConns
		cfg.MinConns = min(cfg.MinConns, o.maxConns)
	}
	return cfg, nil
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	o := &options{log: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := poolConfig(databaseURL, o)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{pool: pool, log: o.log}
	if o.migrate {
		if err := db.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	db.log.Info(ctx, "database connected",
		logger.String("host", cfg.ConnConfig.Host),
		logger.String("database", cfg.ConnConfig.Database),
		logger.Int("max_conns", int(cfg.MaxConns)),
	)
	return db, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Tracks returns a TrackRepository.
func (db *DB) Tracks() *TrackRepository {
	return &TrackRepository{pool: db.pool}
}

// Analyses returns an AnalysisRepository.
func (db *DB) Analyses() *AnalysisRepository {
	return &AnalysisRepository{pool: db.pool}
}
