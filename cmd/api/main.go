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

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/email"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/pdf"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/payroll-engine/internal/service/leave"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/cmlabs-hris/payroll-engine/migrations"
	"github.com/go-chi/httplog/v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		log.Fatal("Error applying migrations: ", err)
	}

	// Repositories
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	payrollRunRepo := postgresql.NewPayrollRunRepository(db)
	paycheckRepo := postgresql.NewPaycheckRepository(db)
	runEventRepo := postgresql.NewRunEventRepository(db)
	txManager := postgresql.NewTxManager(db)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	// Services
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, leaveRequestRepo, cfg.Attendance)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, employeeRepo)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRunRepo,
		paycheckRepo,
		runEventRepo,
		employeeRepo,
		attendanceRepo,
		emailService,
		pdf.NewPayslipRenderer(cfg.Payroll.CompanyName),
		cfg.Payroll,
	)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewAbsenceJobs(attendanceSvc, cfg.Attendance).RegisterJobs(scheduler)
	scheduler.Start()

	router := appHTTP.NewRouter(
		logger,
		cfg.App,
		middleware.NewRateLimiter(cfg.RateLimit),
		JWTService,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	payrollSvc.Wait()
	slog.Info("Server stopped")
}

// newLogger returns a JSON logger whose attribute names follow the ECS
// schema used by the access log.
func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}
