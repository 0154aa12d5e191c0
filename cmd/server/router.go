package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/dmo-api/internal/api"
	apiMiddleware "github.com/phrazzld/dmo-api/internal/api/middleware"
)

// handlers groups the HTTP handlers mounted by newRouter.
type handlers struct {
	auth       *api.AuthHandler
	templates  *api.TemplateHandler
	tasks      *api.TaskHandler
	board      *api.BoardHandler
	tags       *api.TagHandler
	reports    *api.ReportHandler
	social     *api.SocialHandler
	journal    *api.JournalHandler
	vision     *api.VisionHandler
	bucketlist *api.BucketlistHandler
}

// setupRouter builds the handlers from the application services.
func (app *application) setupRouter() http.Handler {
	h := handlers{
		auth:       api.NewAuthHandler(app.userService, app.logger),
		templates:  api.NewTemplateHandler(app.templateService, app.logger),
		tasks:      api.NewTaskHandler(app.taskService, app.boardService.Today, app.logger),
		board:      api.NewBoardHandler(app.boardService, app.logger),
		tags:       api.NewTagHandler(app.tagService, app.logger),
		reports:    api.NewReportHandler(app.reportService, app.logger),
		social:     api.NewSocialHandler(app.socialService, app.logger),
		journal:    api.NewJournalHandler(app.journalService, app.logger),
		vision:     api.NewVisionHandler(app.visionService, app.logger),
		bucketlist: api.NewBucketlistHandler(app.bucketlistService, app.logger),
	}
	app.onShutdown = append(app.onShutdown, h.social.Shutdown)
	return newRouter(h, apiMiddleware.NewAuthMiddleware(app.jwtService), app.logger)
}

// newRouter registers every route. Auth and shared topics are public;
// everything else requires a valid access token.
func newRouter(h handlers, authMiddleware *apiMiddleware.AuthMiddleware, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.auth.Register)
		r.Post("/auth/login", h.auth.Login)
		r.Post("/auth/refresh", h.auth.RefreshToken)
		r.Get("/share/{token}", h.journal.GetShared)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", h.auth.Me)

			r.Get("/board", h.board.GetBoard)

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", h.templates.List)
				r.Post("/", h.templates.Create)
				r.Put("/{id}", h.templates.Update)
				r.Delete("/{id}", h.templates.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.tasks.Create)
				r.Put("/{id}", h.tasks.Update)
				r.Patch("/{id}/quadrant", h.tasks.Move)
				r.Post("/{id}/toggle", h.tasks.Toggle)
				r.Delete("/{id}", h.tasks.Delete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.tags.List)
				r.Post("/", h.tags.Create)
				r.Put("/{id}", h.tags.Update)
				r.Delete("/{id}", h.tags.Delete)
			})

			r.Get("/reports", h.reports.GetReport)

			r.Get("/leaderboard", h.social.Leaderboard)
			r.Get("/stats", h.social.Stats)
			r.Get("/feed", h.social.Feed)
			r.Get("/feed/stream", h.social.Stream)

			r.Route("/journal", func(r chi.Router) {
				r.Get("/topics", h.journal.ListTopics)
				r.Post("/topics", h.journal.CreateTopic)
				r.Put("/topics/{id}", h.journal.RenameTopic)
				r.Delete("/topics/{id}", h.journal.DeleteTopic)
				r.Post("/topics/{id}/share", h.journal.ShareTopic)
				r.Delete("/topics/{id}/share", h.journal.UnshareTopic)
				r.Get("/topics/{id}/posts", h.journal.ListPosts)

				r.Get("/posts/recent", h.journal.RecentPosts)
				r.Post("/posts", h.journal.CreatePost)
				r.Get("/posts/{id}", h.journal.GetPost)
				r.Put("/posts/{id}", h.journal.UpdatePost)
				r.Delete("/posts/{id}", h.journal.DeletePost)

				r.Get("/search", h.journal.Search)
			})

			r.Route("/vision", func(r chi.Router) {
				r.Get("/", h.vision.Board)
				r.Post("/", h.vision.Create)
				r.Put("/{id}", h.vision.Update)
				r.Post("/{id}/toggle", h.vision.Toggle)
				r.Delete("/{id}", h.vision.Delete)
			})

			r.Route("/bucketlist", func(r chi.Router) {
				r.Get("/", h.bucketlist.List)
				r.Post("/", h.bucketlist.Create)
				r.Put("/{id}", h.bucketlist.Update)
				r.Post("/{id}/toggle", h.bucketlist.Toggle)
				r.Delete("/{id}", h.bucketlist.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
