package server

import (
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/config"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/handler"
	"workforce-backend/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Health     handler.HealthHandler
	Docs       handler.DocsHandler
	Attendance handler.AttendanceHandler
	Payroll    handler.PayrollHandler
	Payments   handler.PaymentHandler
	Logs       handler.ActivityLogHandler
	Employees  handler.EmployeeHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, m *metrics.Collectors, metricsHandler http.Handler, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger, m))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	h.Health.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// every employee
		pr.Group(func(er chi.Router) {
			er.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee))
			h.Attendance.RegisterRoutes(er)
			h.Payroll.RegisterRoutes(er)
			h.Payments.RegisterRoutes(er)
			h.Logs.RegisterRoutes(er)
			h.Employees.RegisterRoutes(er)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			h.Payroll.RegisterManagementRoutes(mr)
		})
		// admin only
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			h.Logs.RegisterAdminRoutes(ar)
		})
	})

	return r
}
