package postgres

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository/repositorytest"
)

// Run locally:
//   GO_TEST_INTEGRATION=1 go test ./internal/infrastructure/postgres -v -count=1

func migrationsDir() string {
	// internal/infrastructure/postgres -> repo root
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "db", "migrations"))
}

// startPostgres starts PostgreSQL in a container, applies the migrations and
// returns a pool. Skipped unless GO_TEST_INTEGRATION is set.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "catalog"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/catalog?sslmode=disable", host, port.Port())

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, RunMigrations(dsn, migrationsDir(), logger))
	// a second run is a no-op
	require.NoError(t, RunMigrations(dsn, migrationsDir(), logger))

	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 30})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestIntegration_EntryRepository_Contract(t *testing.T) {
	pool := startPostgres(t)

	repositorytest.Run(t, func(t *testing.T) repository.EntryRepository {
		_, err := pool.Exec(context.Background(), `TRUNCATE catalog_entries`)
		require.NoError(t, err)
		return NewEntryRepository(pool)
	})
}
