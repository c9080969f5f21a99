package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	logger *slog.Logger,
	appCfg config.AppConfig,
	rateLimiter *middleware.RateLimiter,
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.RequestID)

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollViewAll)).Get("/", payrollHandler.ListRuns)

					// Mutations are rate limited per user.
					r.With(
						middleware.RequirePermission(user.PermissionPayrollPrepare),
						rateLimiter.Handler,
					).Post("/preview", payrollHandler.PreviewRun)

					r.Route("/{id}", func(r chi.Router) {
						r.With(middleware.RequirePermission(user.PermissionPayrollViewAll)).Get("/", payrollHandler.GetRun)
						r.With(middleware.RequirePermission(user.PermissionPayrollViewAll)).Get("/events", payrollHandler.ListRunEvents)

						r.Group(func(r chi.Router) {
							r.Use(rateLimiter.Handler)
							r.With(middleware.RequirePermission(user.PermissionPayrollApprove)).Post("/finalize", payrollHandler.FinalizeRun)
							r.With(middleware.RequirePermission(user.PermissionPayrollPay)).Post("/pay", payrollHandler.PayRun)
							r.With(middleware.RequirePermission(user.PermissionPayrollPrepare)).Delete("/", payrollHandler.DeleteRun)
						})
					})
				})

				r.Route("/paychecks", func(r chi.Router) {
					r.With(
						middleware.RequirePermission(user.PermissionPayslipViewOwn),
						middleware.RequireEmployee,
					).Get("/my", payrollHandler.ListMyPaychecks)
					// Ownership is checked by the service for callers without payroll.view_all.
					r.Get("/{id}/payslip", payrollHandler.DownloadPayslip)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-in", attendanceHandler.ClockIn)
					r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-out", attendanceHandler.ClockOut)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", attendanceHandler.GetMyAttendance)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/overview", attendanceHandler.GetOverview)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/employees/{id}", attendanceHandler.GetEmployeeAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCloseDay)).Post("/close-day", attendanceHandler.CloseDay)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.CreateRequest)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", leaveHandler.GetMyRequests)
				})

				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Get("/", leaveHandler.ListRequests)
				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Put("/{id}/approve", leaveHandler.ApproveRequest)
				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Put("/{id}/reject", leaveHandler.RejectRequest)
			})
		})
	})

	return r
}
