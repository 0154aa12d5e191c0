package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/dmo-api/internal/config"
	"github.com/phrazzld/dmo-api/internal/events"
	"github.com/phrazzld/dmo-api/internal/job"
	"github.com/phrazzld/dmo-api/internal/platform/postgres"
	"github.com/phrazzld/dmo-api/internal/realtime"
	"github.com/phrazzld/dmo-api/internal/search"
	"github.com/phrazzld/dmo-api/internal/seed"
	"github.com/phrazzld/dmo-api/internal/service"
	"github.com/phrazzld/dmo-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	// Optional backends; nil when not configured.
	redis  *redis.Client
	broker *realtime.Broker
	meili  *search.Meili

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *job.Runner

	userService       *service.UserService
	taskService       *service.TaskService
	boardService      *service.BoardService
	templateService   *service.TemplateService
	tagService        *service.TagService
	reportService     *service.ReportService
	socialService     *service.SocialService
	journalService    *service.JournalService
	visionService     *service.VisionService
	bucketlistService *service.BucketlistService

	// onShutdown runs when the HTTP server starts shutting down.
	onShutdown []func()
}

// newApplication wires stores, backends, the job runner and services.
// The job runner is started before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	loc, err := cfg.DMO.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	starter, err := seed.DefaultTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load starter templates: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	templateStore := postgres.NewPostgresTemplateStore(db, logger)
	materializationStore := postgres.NewPostgresMaterializationStore(db, logger)
	completionStore := postgres.NewPostgresCompletionStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)
	journalStore := postgres.NewPostgresJournalStore(db, logger)
	visionStore := postgres.NewPostgresVisionStore(db, logger)
	bucketlistStore := postgres.NewPostgresBucketlistStore(db, logger)
	jobStore := postgres.NewPostgresJobStore(db, logger)

	app.setupRealtime(ctx)
	if cfg.Search.MeiliURL != "" {
		app.meili = search.NewMeili(cfg.Search.MeiliURL, cfg.Search.MeiliAPIKey, cfg.Search.Index, logger)
		logger.Info("Meilisearch configured", "index", cfg.Search.Index)
	} else {
		logger.Info("Meilisearch not configured, journal search uses PostgreSQL")
	}
	searchService := search.NewService(app.meili, journalStore, logger)

	registry := job.NewRegistry()
	searchJobs := job.NewSearchIndexFactory(journalStore, searchService)
	registry.Register(job.TypeSearchIndex, searchJobs.FromRecord)
	var feedJobs *job.FeedPublishFactory
	if app.broker != nil {
		feedJobs = job.NewFeedPublishFactory(completionStore, app.broker)
		registry.Register(job.TypeFeedPublish, feedJobs.FromRecord)
	}

	app.jobRunner = job.NewRunner(jobStore, registry, job.RunnerConfig{
		WorkerCount:           cfg.Jobs.WorkerCount,
		QueueSize:             cfg.Jobs.QueueSize,
		StuckJobAge:           time.Duration(cfg.Jobs.StuckJobAgeMinutes) * time.Minute,
		StuckJobCheckInterval: job.DefaultRunnerConfig().StuckJobCheckInterval,
	}, logger)
	if err := app.jobRunner.Start(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(job.NewEventHandler(feedJobs, searchJobs, app.jobRunner, logger))

	app.journalService = service.NewJournalService(journalStore, searchService, app.eventEmitter, loc, logger)
	app.userService = service.NewUserService(db, userStore, templateStore, app.jwtService,
		auth.NewBcryptVerifier(), starter, logger)
	app.taskService = service.NewTaskService(db, taskStore, completionStore, tagStore,
		app.journalService, app.eventEmitter, logger)
	app.boardService = service.NewBoardService(taskStore, templateStore, materializationStore,
		cfg.DMO.GuardHold, loc, logger)
	app.templateService = service.NewTemplateService(templateStore, tagStore, logger)
	app.tagService = service.NewTagService(tagStore, logger)
	app.reportService = service.NewReportService(taskStore, loc, logger)
	app.socialService = service.NewSocialService(completionStore, userStore, app.broker, loc, logger)
	app.visionService = service.NewVisionService(visionStore, logger)
	app.bucketlistService = service.NewBucketlistService(bucketlistStore, tagStore, logger)

	return app, nil
}

// setupRealtime connects the activity feed broker. A configured but
// unreachable Redis disables streaming instead of failing startup.
func (app *application) setupRealtime(ctx context.Context) {
	if app.config.Redis.URL == "" {
		app.logger.Info("Redis not configured, live feed streaming disabled")
		return
	}
	client, err := realtime.NewClient(ctx, app.config.Redis.URL)
	if err != nil {
		app.logger.Warn("Redis unavailable, live feed streaming disabled", "error", err)
		return
	}
	app.redis = client
	app.broker = realtime.NewBroker(client, app.config.Redis.Channel, app.logger)
	app.logger.Info("Realtime feed broker connected", "channel", app.config.Redis.Channel)
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}
	if app.meili != nil {
		app.meili.Close()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing Redis connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
