package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/compliance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/geofence"
	reportService "github.com/cmlabs-hris/hris-attendance-go/internal/service/report"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone: ", err)
	}

	db, err := database.NewPostgreSQLDBWithConfig(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			log.Fatal("Migration failed: ", err)
		}
		slog.Info("database schema applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	attendanceMetrics, err := metrics.NewAttendanceMetrics(registry)
	if err != nil {
		log.Fatal("Failed to register metrics: ", err)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	transactor := postgresql.NewTransactor(db)
	shiftRepo := postgresql.NewShiftRecordRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	locationRepo := postgresql.NewWorkLocationRepository(db)
	leaveRepo := postgresql.NewLeaveStateRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	photoService := file.NewPhotoService(fileStorage)
	geofenceService := geofence.NewGeofenceService(employeeRepo, locationRepo, cfg.Attendance.DefaultRadius)
	schedules := compliance.NewScheduleResolver(compliance.ScheduleConfig{
		AdminTitleMatch: cfg.Attendance.AdminTitleMatch,
		AdminEntry:      cfg.Attendance.AdminEntry,
		AdminExit:       cfg.Attendance.AdminExit,
		DefaultEntry:    cfg.Attendance.DefaultEntry,
		DefaultExit:     cfg.Attendance.DefaultExit,
	})

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		shiftRepo,
		employeeRepo,
		leaveRepo,
		geofenceService,
		photoService,
		schedules,
		attendanceMetrics,
		attendanceService.Config{
			Location:   loc,
			PendingTTL: cfg.Attendance.PendingTTL,
		},
	)
	reportSvc := reportService.NewReportService(
		shiftRepo,
		employeeRepo,
		leaveRepo,
		reportService.NewWeekdayCalendar(cfg.Attendance.Holidays...),
		reportService.Config{
			Location:    loc,
			Concurrency: cfg.Attendance.ReportConcurrency,
		},
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)
	locationHandler := appHTTP.NewLocationHandler(geofenceService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			UploadsPath:    cfg.Storage.BasePath,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		},
		JWTService,
		attendanceHandler,
		reportHandler,
		locationHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
