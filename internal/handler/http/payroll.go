package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	PreviewRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRunEvents(w http.ResponseWriter, r *http.Request)
	FinalizeRun(w http.ResponseWriter, r *http.Request)
	PayRun(w http.ResponseWriter, r *http.Request)
	DeleteRun(w http.ResponseWriter, r *http.Request)

	// Paychecks
	ListMyPaychecks(w http.ResponseWriter, r *http.Request)
	DownloadPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) PreviewRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req payroll.PreviewPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("PreviewRun decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Preview(r.Context(), actor.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", result)
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	req := payroll.ListRunsRequest{Status: r.URL.Query().Get("status")}

	result, err := h.payrollService.ListRuns(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRunEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payrollService.ListRunEvents(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) FinalizeRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.Finalize(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run approved", result)
}

func (h *payrollHandlerImpl) PayRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.Pay(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run paid", result)
}

func (h *payrollHandlerImpl) DeleteRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := h.payrollService.Delete(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run deleted successfully", nil)
}

// ========== PAYCHECKS ==========

func (h *payrollHandlerImpl) ListMyPaychecks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ListMyPaychecks(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DownloadPayslip renders into a buffer first so that a failure still gets
// a JSON error instead of a truncated PDF.
func (h *payrollHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var buf bytes.Buffer
	if err := h.payrollService.WritePayslip(r.Context(), id, actor, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payslip-%s.pdf\"", id))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write payslip", "paycheck_id", id, "error", err)
	}
}
