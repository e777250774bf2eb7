// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/duskfall/adventure/internal/config"
	"github.com/duskfall/adventure/internal/storage/postgres"
)

// testSchema mirrors the migrations, applied directly so tests do not need
// the migrate tool.
const testSchema = `
	CREATE TABLE IF NOT EXISTS players (
		owner_id    BIGINT PRIMARY KEY,
		name        TEXT NOT NULL,
		map_id      INTEGER NOT NULL,
		next_map_id INTEGER NOT NULL DEFAULT -1,
		exp         BIGINT NOT NULL DEFAULT 0 CHECK (exp >= 0),
		gold        BIGINT NOT NULL DEFAULT 0 CHECK (gold >= 0),
		explored    INTEGER[] NOT NULL DEFAULT '{}',
		compendium  BYTEA NOT NULL DEFAULT '\x',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS players_name_lower_idx ON players (LOWER(name));

	CREATE TABLE IF NOT EXISTS enemies (
		id      INTEGER PRIMARY KEY,
		name    TEXT NOT NULL,
		map_ids INTEGER[] NOT NULL DEFAULT '{}',
		tier    INTEGER NOT NULL CHECK (tier >= 1)
	);
`

// startContainer launches a PostgreSQL container and returns it with the
// connection config for the mapped port.
func startContainer(ctx context.Context) (testcontainers.Container, config.DatabaseConfig, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, config.DatabaseConfig{}, fmt.Errorf("starting postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, config.DatabaseConfig{}, fmt.Errorf("getting container host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, config.DatabaseConfig{}, fmt.Errorf("getting mapped port: %w", err)
	}

	return container, config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}, nil
}

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a dedicated PostgreSQL test container and
// returns a connected Pool. The container is terminated when the test ends.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, dbCfg, err := startContainer(ctx)
	if err != nil {
		t.Fatalf("%v [%s]", err, time.Since(start))
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
//
// Precondition: Pool must be connected.
// Postcondition: The players and enemies tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	if _, err := pc.RawPool.Exec(ctx, testSchema); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}
