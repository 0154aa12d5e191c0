package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/dmo-api/internal/config"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
)

// bootstrap loads configuration and installs the default logger.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"timezone", cfg.DMO.Timezone)
	l.Debug("Optional backends",
		"redis_configured", cfg.Redis.URL != "",
		"meilisearch_configured", cfg.Search.MeiliURL != "")

	return cfg, l, nil
}
