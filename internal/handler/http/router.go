package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// UploadsPath is served under /uploads when set.
	UploadsPath    string
	MetricsHandler http.Handler
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
	locationHandler LocationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.UploadsPath != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsPath))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendancePunch)).Post("/punch", attendanceHandler.Punch)

				r.Route("/pending/{token}", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendancePunch))
					r.Post("/confirm", attendanceHandler.ConfirmPending)
					r.Post("/cancel", attendanceHandler.CancelPending)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/state", attendanceHandler.GetState)
					r.Get("/pattern", attendanceHandler.CheckPattern)
				})

				r.Route("/statistics", func(r chi.Router) {
					r.With(middleware.RequireManager, middleware.RequirePermission(user.PermissionReportsView)).Get("/", reportHandler.GetFleetStatistics)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/{employeeID}", reportHandler.GetEmployeeStatistics)
				})

				r.Route("/shifts", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/", attendanceHandler.List)

					r.Route("/{id}", func(r chi.Router) {
						r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/", attendanceHandler.Get)
						r.With(middleware.RequirePermission(user.PermissionAttendanceOverride)).Put("/", attendanceHandler.Update)
						r.With(middleware.RequirePermission(user.PermissionAttendanceCleanup)).Delete("/", attendanceHandler.Delete)

						r.Route("/justification", func(r chi.Router) {
							r.With(middleware.RequirePermission(user.PermissionAttendanceJustify)).Post("/", attendanceHandler.SubmitJustification)
							r.With(middleware.RequirePermission(user.PermissionAttendanceResolve)).Post("/resolve", attendanceHandler.ResolveJustification)
						})
					})
				})
			})

			r.Route("/locations", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLocationView))
				r.Get("/nearest", locationHandler.Nearest)
			})
		})
	})
	return r
}
