package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/handler"
	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
	mw "github.com/Ayu-zh/placement-connector/internal/middleware"
	"github.com/Ayu-zh/placement-connector/internal/services/catalog"
	"github.com/Ayu-zh/placement-connector/internal/services/dashboard"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/services/jobs"
	"github.com/Ayu-zh/placement-connector/internal/services/students"
	"github.com/Ayu-zh/placement-connector/internal/services/teammates"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Clock     clock.Clock
	Identity  *identity.Service
	Jobs      *jobs.Service
	Students  *students.Service
	Catalog   *catalog.Service
	Teammates *teammates.Service
	Dashboard *dashboard.Service
	// Keepalive is the comment interval on event streams (optional)
	Keepalive time.Duration
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.Identity, cfg.Keepalive)
	jobHandler := handler.NewJobHandler(cfg.Jobs)
	studentHandler := handler.NewStudentHandler(cfg.Students)
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)
	teammateHandler := handler.NewTeammateHandler(cfg.Teammates)
	dashboardHandler := handler.NewDashboardHandler(cfg.Dashboard)
	healthHandler := handler.NewHealthHandler(cfg.Clock)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Identity)
	loggingMiddleware := mw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Sign-up, sign-in and sign-out need no valid session. The event stream checks its
	// own token so that revoked sessions get a proper 401.
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/events", authHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Everything else requires a signed-in identity
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	protected.HandleFunc("/auth/session", authHandler.Session).Methods(http.MethodGet)
	protected.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	protected.HandleFunc("/identities/{id}", authHandler.Identity).Methods(http.MethodGet)

	// Jobs: read for everyone, write for administrators
	protected.HandleFunc("/jobs", jobHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{id}", jobHandler.Get).Methods(http.MethodGet)
	protected.Handle("/jobs", admin(jobHandler.Create)).Methods(http.MethodPost)
	protected.Handle("/jobs/{id}", admin(jobHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/jobs/{id}", admin(jobHandler.Delete)).Methods(http.MethodDelete)

	// Students: a student may read their own record
	protected.HandleFunc("/students/{id}", studentHandler.Get).Methods(http.MethodGet)
	protected.Handle("/students", admin(studentHandler.List)).Methods(http.MethodGet)
	protected.Handle("/students", admin(studentHandler.Create)).Methods(http.MethodPost)
	protected.Handle("/students/{id}", admin(studentHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/students/{id}", admin(studentHandler.Delete)).Methods(http.MethodDelete)
	protected.Handle("/students/{id}/verify", admin(studentHandler.ToggleVerification)).Methods(http.MethodPost)

	// Certifications and hackathons
	protected.HandleFunc("/certifications", catalogHandler.ListCertifications).Methods(http.MethodGet)
	protected.Handle("/certifications", admin(catalogHandler.CreateCertification)).Methods(http.MethodPost)
	protected.Handle("/certifications/{id}", admin(catalogHandler.UpdateCertification)).Methods(http.MethodPut)
	protected.Handle("/certifications/{id}", admin(catalogHandler.DeleteCertification)).Methods(http.MethodDelete)
	protected.Handle("/certifications/{id}/toggle", admin(catalogHandler.ToggleCertification)).Methods(http.MethodPost)
	protected.HandleFunc("/hackathons", catalogHandler.ListHackathons).Methods(http.MethodGet)
	protected.Handle("/hackathons", admin(catalogHandler.CreateHackathon)).Methods(http.MethodPost)
	protected.Handle("/hackathons/{id}", admin(catalogHandler.UpdateHackathon)).Methods(http.MethodPut)
	protected.Handle("/hackathons/{id}", admin(catalogHandler.DeleteHackathon)).Methods(http.MethodDelete)
	protected.Handle("/hackathons/{id}/toggle", admin(catalogHandler.ToggleHackathon)).Methods(http.MethodPost)

	// Teammate board
	protected.HandleFunc("/teammates", teammateHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/teammates/search", teammateHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/teammates", teammateHandler.Post).Methods(http.MethodPost)
	protected.HandleFunc("/teammates/{id}", teammateHandler.Delete).Methods(http.MethodDelete)

	protected.Handle("/dashboard/stats", admin(dashboardHandler.Stats)).Methods(http.MethodGet)

	return r
}
