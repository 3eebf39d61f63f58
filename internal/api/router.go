package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/api/handlers"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/auth"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/monitoring"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	taskService services.TaskServiceProvider,
	eventService services.EventServiceProvider,
	statUpdater *monitoring.StatUpdater,
	corsAllowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the SPA client
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, eventService)
	taskHandler := handlers.NewTaskHandler(taskService)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler(statUpdater)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// WebSocket connection endpoint (token validated from query string)
		r.Get("/ws", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware())
				r.Get("/me", authHandler.GetMe)
			})
		})

		// REST API endpoints for tasks, gated by the auth middleware
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetAll)
				r.Post("/", taskHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
				})
			})

			r.Get("/events", eventHandler.GetRecent)
			r.Get("/status", statusHandler.Get)
		})
	})

	return r
}
