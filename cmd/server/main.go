package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"workforce-backend/internal/clock"
	"workforce-backend/internal/config"
	"workforce-backend/internal/db"
	"workforce-backend/internal/handler"
	"workforce-backend/internal/metrics"
	"workforce-backend/internal/repository"
	"workforce-backend/internal/server"
	"workforce-backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.Env == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mc := metrics.New(reg)
	clk := clock.System{Location: cfg.Location}

	// repositories
	employeeRepo := repository.EmployeeRepository{DB: pg}
	attendanceRepo := repository.AttendanceRepository{DB: pg}
	paymentRepo := repository.PaymentRepository{DB: pg, Location: cfg.Location}
	activityRepo := repository.ActivityLogRepository{DB: pg}

	// services
	attendanceSvc := service.AttendanceService{
		Store:     attendanceRepo,
		Employees: employeeRepo,
		Workday:   cfg.Workday(),
		Logger:    logger,
		Metrics:   mc,
	}
	payrollSvc := service.PayrollService{
		Store:     paymentRepo,
		Employees: employeeRepo,
		Workday:   cfg.Workday(),
		Logger:    logger,
		Metrics:   mc,
	}
	activitySvc := service.ActivityLogService{Store: activityRepo}

	router := server.NewRouter(cfg, logger, mc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), server.Handlers{
		Health:     handler.HealthHandler{DB: pg, Version: version},
		Docs:       handler.DocsHandler{Title: "Workforce API"},
		Attendance: handler.AttendanceHandler{Service: attendanceSvc, Clock: clk, Location: cfg.Location, Logger: logger},
		Payroll:    handler.PayrollHandler{Service: payrollSvc, Clock: clk, Location: cfg.Location, Logger: logger},
		Payments:   handler.PaymentHandler{Service: payrollSvc, Clock: clk, Location: cfg.Location, Logger: logger},
		Logs:       handler.ActivityLogHandler{Service: activitySvc, Clock: clk, Logger: logger},
		Employees:  handler.EmployeeHandler{Employees: employeeRepo, Logger: logger},
	})

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
