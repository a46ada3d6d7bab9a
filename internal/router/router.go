package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spaceship-manager/internal/config"
	"spaceship-manager/internal/handler"
	"spaceship-manager/internal/middleware"
	"spaceship-manager/internal/websocket"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Spaceship *handler.SpaceshipHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.With(authMiddleware.RequireAuth).Get("/ws", hub.ServeWS)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", handlers.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", handlers.Auth.Me)
		})

		api.Route("/spaceships", func(ships chi.Router) {
			ships.Use(authMiddleware.RequireAuth)

			ships.Get("/", handlers.Spaceship.List)
			ships.Get("/search", handlers.Spaceship.Search)
			ships.Get("/{id}", handlers.Spaceship.Get)

			// Writes are admin-only.
			ships.With(authMiddleware.RequireRoles("admin")).Post("/", handlers.Spaceship.Create)
			ships.With(authMiddleware.RequireRoles("admin")).Put("/{id}", handlers.Spaceship.Update)
			ships.With(authMiddleware.RequireRoles("admin")).Delete("/{id}", handlers.Spaceship.Delete)
		})
	})

	return r
}
