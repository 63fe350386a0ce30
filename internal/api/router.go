package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/typing-backend/internal/api/handlers"
	"github.com/baharkarakas/typing-backend/internal/auth"
	"github.com/baharkarakas/typing-backend/internal/config"
	"github.com/baharkarakas/typing-backend/internal/metrics"
	"github.com/baharkarakas/typing-backend/internal/middleware"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type RouterDeps struct {
	Cfg   config.Config
	Log   *slog.Logger
	TM    *auth.TokenManager
	Users handlers.UserService
	Tests handlers.TypingTestService
	Texts handlers.TextService
	Certs handlers.CertificateService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(d.Log), middleware.AccessLog(d.Log), middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS, d.Cfg.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Users, d.Log)
	adminH := handlers.NewAdminHandler(d.Users, d.Log)
	testsH := handlers.NewTypingTestHandler(d.Tests, d.Log)
	textsH := handlers.NewTextHandler(d.Texts, d.Log)
	certsH := handlers.NewCertificateHandler(d.Certs, d.Log)
	authMW := middleware.NewAuthMiddleware(d.TM)

	// ---------- public ----------
	r.Post("/signUp", authH.SignUp)
	r.Post("/login", authH.Login)
	r.Post("/magic-login", authH.MagicLogin)
	r.Post("/magic-login/verify", authH.VerifyMagicLogin)
	r.Post("/admin-login", adminH.Login)

	r.Get("/typing-tests/leaders", testsH.Leaders)
	r.Get("/random-text", textsH.Random)
	r.Get("/texts", textsH.List)
	r.Get("/certificates/verify/{validationId}", certsH.Verify)

	// ---------- authenticated ----------
	r.Group(func(r chi.Router) {
		r.Use(authMW.Auth)

		r.Get("/user-profile", authH.Profile)

		r.Post("/typing-tests", testsH.Submit)
		r.Get("/typing-tests", testsH.List)
		r.Get("/typing-tests/summary", testsH.Summary)
		r.Get("/cpm-statistics", testsH.CPMStatistics)

		r.Get("/certificates", certsH.List)

		// ---------- admin ----------
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Get("/users", adminH.ListUsers)
			r.Put("/users/{id}", adminH.UpdateUser)
			r.Patch("/users/{id}/block", adminH.BlockUser)
			r.Delete("/users/{id}", adminH.DeleteUser)

			r.Post("/text", textsH.Create)
			r.Put("/texts/{id}", textsH.Update)
			r.Delete("/texts/{id}", textsH.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Route not found"}` + "\n"))
	})

	return r
}
