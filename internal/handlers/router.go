package handlers

import (
	"net/http"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/metrics"
	"github.com/DeepakPatel004/CivicDesk/internal/middleware"
	"github.com/DeepakPatel004/CivicDesk/internal/ratelimit"
	"github.com/DeepakPatel004/CivicDesk/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router needs to build its handlers.
type Deps struct {
	Citizens    CitizenAuth
	Reports     Reports
	Employees   Employees
	Authorities Authorities
	Analytics   Analytics
	Activity    ActivityLog

	Tokens  *auth.TokenIssuer
	Authz   *access.Authorizer
	Limiter ratelimit.Limiter

	DB    Pinger
	Cache Pinger // nil without Redis

	AllowedOrigins []string
	MaxUploadMB    int
	UploadDir      string // non-empty when photos are stored on local disk

	Logger *zap.Logger
}

// NewRouter builds the CivicDesk HTTP API.
func NewRouter(d Deps) http.Handler {
	sugar := d.Logger.Sugar()

	authH := NewAuthHandler(d.Citizens, sugar)
	reportH := NewReportHandler(d.Reports, d.MaxUploadMB, sugar)
	adminH := NewAdminHandler(d.Employees, d.Reports, sugar)
	authorityH := NewAuthorityHandler(d.Authorities, sugar)
	analyticsH := NewAnalyticsHandler(d.Analytics, sugar)
	activityH := NewActivityHandler(d.Activity, sugar)
	healthH := NewHealthHandler(d.DB, d.Cache, sugar)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	if d.UploadDir != "" {
		fs := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(d.UploadDir)))
		r.Handle(storage.PublicPrefix+"/*", fs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Check)
		r.Get("/health/ready", healthH.Ready)

		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middleware.RateLimit(d.Limiter, sugar))
			}

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", authH.Signup)
				r.Post("/verify-otp", authH.VerifyOTP)
				r.Post("/login", authH.Login)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireCitizen(d.Tokens))
				r.Post("/submit", reportH.Submit)
				r.Get("/mine", reportH.Mine)
				r.Get("/feed", reportH.Feed)
				r.Post("/{reportId}/upvote", reportH.Upvote)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Post("/login", adminH.Login)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee(d.Tokens))
					r.Get("/reports", adminH.Reports)
					r.Get("/reports/{reportId}", adminH.Report)
					r.Patch("/reports/{reportId}/status", adminH.UpdateStatus)

					// Super Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireSuperAdmin(d.Authz))
						r.Post("/register", adminH.Register)
						r.Get("/employees", adminH.Employees)
						r.Patch("/employees/{employeeId}/status", adminH.SetEmployeeStatus)
						r.Get("/heatmap", analyticsH.Heatmap)
						r.Post("/authorities", authorityH.Create)
						r.Get("/authorities", authorityH.List)
						r.Delete("/authorities/{authorityId}", authorityH.Delete)
						r.Get("/activity/recent", activityH.Recent)
						r.Get("/activity/reports/{reportId}", activityH.ByReport)
					})
				})
			})
		})
	})

	return r
}
