//go:build integration

package testdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresImage is the image started when no database URL is configured.
const PostgresImage = "postgres:16-alpine"

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// containerDatabaseURL starts one throwaway PostgreSQL container per test
// process and returns its connection string. The testcontainers reaper
// removes the container when the process exits.
func containerDatabaseURL(ctx context.Context) (string, error) {
	containerOnce.Do(func() {
		containerURL, containerErr = startContainer(ctx)
	})
	return containerURL, containerErr
}

func startContainer(ctx context.Context) (url string, err error) {
	// Docker discovery panics on some hosts without a daemon.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	ctr, err := tcpostgres.Run(ctx, PostgresImage,
		tcpostgres.WithDatabase("dmo_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		if ctr != nil {
			_ = testcontainers.TerminateContainer(ctr)
		}
		return "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	url, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		return "", fmt.Errorf("failed to read container connection string: %w", err)
	}
	return url, nil
}
