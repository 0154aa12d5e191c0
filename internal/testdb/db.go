//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/dmo-api/internal/platform/postgres"
	"github.com/phrazzld/dmo-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// Timeouts for connection checks and migrations, and for pulling and
// starting the fallback container.
const (
	TestTimeout           = 30 * time.Second
	ContainerStartTimeout = 3 * time.Minute
)

// Environment variables consulted for the test database, in priority order.
const (
	EnvTestDatabaseURL = "DMO_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is configured.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsCI reports whether the tests run under a CI provider.
func IsCI() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetTestDBWithT opens the test database, applies migrations once per
// process and registers cleanup. Without a configured URL it starts a
// PostgreSQL container, and skips the test when Docker is unavailable. In CI
// a missing URL is a failure.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		if IsCI() {
			t.Fatalf("%s or %s must be set in CI", EnvTestDatabaseURL, EnvDatabaseURL)
		}
		startCtx, cancel := context.WithTimeout(context.Background(), ContainerStartTimeout)
		url, err := containerDatabaseURL(startCtx)
		cancel()
		if err != nil {
			t.Skipf("set %s or start Docker to run database tests: %v", EnvTestDatabaseURL, err)
		}
		dbURL = url
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open %s", redact.String(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database unreachable at %s", redact.String(dbURL))

	migrateOnce.Do(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		migrateErr = postgres.Migrate(ctx, db, "up", logger)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can share one database without seeing each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
