package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scribeworks/blog-backend/internal/config"
	"github.com/scribeworks/blog-backend/internal/handlers"
	"github.com/scribeworks/blog-backend/internal/middleware"
	"github.com/scribeworks/blog-backend/internal/repo"
)

// newRouter wires repos, handlers, and the middleware chain into the full API.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	postRepo := repo.NewPostRepo(database)

	secret := []byte(cfg.JWTSecret)
	authHandler := &handlers.AuthHandler{
		Users:    userRepo,
		Secret:   secret,
		TokenTTL: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}
	postHandler := &handlers.PostHandler{Posts: postRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/", root)
	r.Get("/ready", ready(database))
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWT(secret))
				r.Put("/profile", authHandler.UpdateProfile)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Get("/user/{username}", postHandler.ListByUser)
			r.Get("/{id}", postHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWT(secret))
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})
	})

	return r
}

func root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"Blog Backend API is running!"}`))
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"OK"}`))
}

// ready reports 503 until the database answers a ping.
func ready(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	}
}
