// Package postgres is the Postgres + pgvector backend for the property index
// and the interaction log.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
)

// DB wraps a database/sql pool opened with the lib/pq driver.
type DB struct {
	db         *sql.DB
	dimensions int
}

// Open creates the pool. Connectivity is checked lazily; use WaitForReady.
func Open(dsn string, dimensions int) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn is required")
	}
	if dimensions <= 0 {
		return nil, errors.New("dimensions must be positive")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	return &DB{db: db, dimensions: dimensions}, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping")
	}
	return nil
}

// Close releases the pool.
func (d *DB) Close() {
	_ = d.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := d.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Migrate creates the pgvector extension and the tables if they are missing.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(d.dimensions) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to migrate: %s", firstLine(stmt))
		}
	}
	return nil
}

// Properties returns the property index view of the database.
func (d *DB) Properties() *PropertyStore {
	return &PropertyStore{d: d}
}

// Interactions returns the interaction log view of the database.
func (d *DB) Interactions() *InteractionStore {
	return &InteractionStore{d: d}
}

func schemaStatements(dimensions int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			address TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL,
			photo_url TEXT NOT NULL DEFAULT 'N/A',
			video360_url TEXT NOT NULL DEFAULT 'N/A',
			render_url TEXT NOT NULL DEFAULT 'N/A',
			embedding vector(` + strconv.Itoa(dimensions) + `) NOT NULL,
			created_ts BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties (price)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGSERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_created_at ON interactions (created_at DESC)`,
	}
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func placeholders(n int) string {
	list := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, placeholder(i))
	}
	return strings.Join(list, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
