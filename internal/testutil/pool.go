package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	sharedOnce sync.Once
	sharedPool *pgxpool.Pool
	sharedErr  error
)

// NewPool returns a pool for a process-wide shared test database with the
// schema applied. The backing container is started once and reaped when the
// test process exits; tests sharing it must use unique row identities.
//
// Precondition: Docker must be available.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	sharedOnce.Do(func() {
		ctx := context.Background()
		container, cfg, err := startContainer(ctx)
		if err != nil {
			sharedErr = err
			return
		}
		_ = container // reaped by testcontainers at process exit

		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			sharedErr = err
			return
		}
		if _, err := pool.Exec(ctx, testSchema); err != nil {
			sharedErr = err
			return
		}
		sharedPool = pool
	})
	if sharedErr != nil {
		t.Fatalf("shared test database: %v", sharedErr)
	}
	return sharedPool
}
