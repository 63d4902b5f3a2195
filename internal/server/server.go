package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"waypost/internal/config"
	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
	"waypost/internal/domain/location"
	"waypost/internal/domain/profile"
	"waypost/internal/server/handlers"
	"waypost/internal/service/feed"
	"waypost/internal/service/notify"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Deps collects everything the HTTP layer needs.
type Deps struct {
	Backend     content.Backend
	Profiles    profile.Service
	Preferences profile.Preferences
	Feed        *feed.Service
	Engine      geo.Service
	Places      geo.PlaceResolver
	Tracker     *location.Tracker
	Watcher     *notify.Watcher
	Hub         *Hub
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, userID string, deps Deps) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	storyHandler := handlers.NewStoryHandler(deps.Feed, deps.Backend, userID)
	updateHandler := handlers.NewUpdateHandler(deps.Feed, deps.Backend, deps.Tracker, userID)
	draftHandler := handlers.NewDraftHandler(deps.Backend, userID)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Preferences, userID)
	locationHandler := handlers.NewLocationHandler(deps.Tracker, deps.Watcher, deps.Engine, deps.Places)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			// Stories API
			r.Route("/stories", func(r chi.Router) {
				r.Get("/", storyHandler.ListStories)
				r.Post("/", storyHandler.CreateStory)
				r.Get("/{id}", storyHandler.GetStory)
				r.Put("/{id}/like", storyHandler.SetLiked)
				r.Put("/{id}/pin", storyHandler.SetPinned)

				r.Route("/{id}/comments", func(r chi.Router) {
					r.Get("/", storyHandler.ListComments)
					r.Post("/", storyHandler.CreateComment)
				})
			})

			// Reports API
			r.Post("/reports", storyHandler.CreateReport)

			// Local updates API
			r.Route("/updates", func(r chi.Router) {
				r.Get("/nearby", updateHandler.ListNearby)
				r.Post("/", updateHandler.CreateUpdate)
				r.Get("/categories", updateHandler.ListCategories)
			})

			// Drafts API
			r.Route("/drafts", func(r chi.Router) {
				r.Get("/", draftHandler.ListDrafts)
				r.Put("/", draftHandler.SaveDraft)
				r.Delete("/{id}", draftHandler.DeleteDraft)
			})

			// Profiles API
			r.Route("/profiles", func(r chi.Router) {
				r.Get("/{id}", profileHandler.GetProfile)
				r.Put("/me", profileHandler.UpdateProfile)
			})

			// Preferences API
			r.Route("/prefs", func(r chi.Router) {
				r.Get("/mutes", profileHandler.GetMutes)
				r.Put("/mutes/{category}", profileHandler.SetMute)
			})

			// Location API
			r.Route("/location", func(r chi.Router) {
				r.Get("/", locationHandler.GetState)
				r.Put("/permission", locationHandler.SetPermission)
				r.Put("/fix", locationHandler.SetFix)
				r.Delete("/fix", locationHandler.ClearFix)
			})

			// Geo API
			r.Route("/geo", func(r chi.Router) {
				r.Get("/distance", locationHandler.GetDistance)
				r.Get("/place", locationHandler.GetPlace)
			})
		})
	})

	// WebSocket endpoint for in-app notifications
	router.Get("/ws/notifications", deps.Hub.ServeWS)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
