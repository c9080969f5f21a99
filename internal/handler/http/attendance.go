package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetEmployeeAttendance(w http.ResponseWriter, r *http.Request)
	GetOverview(w http.ResponseWriter, r *http.Request)
	CloseDay(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// ClockIn implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req attendance.ClockRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("ClockIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), actor.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", result)
}

// ClockOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req attendance.ClockRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("ClockOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), actor.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	h.listAttendance(w, r, actor.EmployeeID)
}

// GetEmployeeAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	h.listAttendance(w, r, chi.URLParam(r, "id"))
}

func (h *AttendanceHandlerImpl) listAttendance(w http.ResponseWriter, r *http.Request, employeeID string) {
	req := attendance.ListAttendanceRequest{
		EmployeeID: employeeID,
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.attendanceService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetOverview implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetOverview(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetOverview(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CloseDay implements AttendanceHandler. The date defaults to today in the
// attendance timezone.
func (h *AttendanceHandlerImpl) CloseDay(w http.ResponseWriter, r *http.Request) {
	var req attendance.CloseDayRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("CloseDay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date := h.attendanceService.Today()
	if req.Date != nil {
		parsed, ok := validator.IsValidDate(*req.Date)
		if !ok {
			response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}})
			return
		}
		date = parsed
	}

	inserted, err := h.attendanceService.CloseDay(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.CloseDayResponse{
		Date:           date.Format(validator.DateLayout),
		AbsentInserted: inserted,
	})
}
