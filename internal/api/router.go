package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/ngo-backend/internal/api/handlers"
	"github.com/baharkarakas/ngo-backend/internal/auth"
	"github.com/baharkarakas/ngo-backend/internal/metrics"
	"github.com/baharkarakas/ngo-backend/internal/middleware"
	"github.com/baharkarakas/ngo-backend/internal/models"
)

type RouterDeps struct {
	Log         *slog.Logger
	Tokens      *auth.TokenManager
	Users       handlers.UserAPI
	Donations   handlers.DonationAPI
	Stats       handlers.StatsAPI
	CORSOrigins []string
	RateRPS     int
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, middleware.RequestID, middleware.Logger(d.Log), middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Users, d.Log)
	donH := handlers.NewDonationHandler(d.Donations, d.Log)
	adminH := handlers.NewAdminHandler(d.Stats, d.Log)
	authMW := middleware.NewAuthMiddleware(d.Tokens)

	r.Route("/api", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- donations ----------
		r.Route("/donations", func(r chi.Router) {
			r.Use(authMW.Auth, middleware.RequireRole(models.RoleUser))
			r.Post("/create-order", donH.CreateOrder)
			r.Post("/verify", donH.Verify)
			r.Post("/mark-failed", donH.MarkFailed)
			r.Get("/my", donH.Mine)
		})

		// ---------- admin ----------
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authH.AdminLogin)
			r.Group(func(r chi.Router) {
				r.Use(authMW.Auth, middleware.RequireRole(models.RoleAdmin))
				r.Get("/stats", adminH.Totals)
				r.Get("/donations", adminH.Donations)
			})
		})
	})

	return r
}
