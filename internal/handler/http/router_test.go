package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp = "1h"
	handlerTestSecret    = "test-secret-key-for-jwt"
)

var (
	ownerActor    = user.Actor{UserID: "user-owner", Role: user.RoleOwner}
	managerActor  = user.Actor{UserID: "user-manager", EmployeeID: "emp-manager", Role: user.RoleManager}
	employeeActor = user.Actor{UserID: "user-employee", EmployeeID: "emp-1", Role: user.RoleEmployee}
)

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	payroll    *fakePayrollService
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
}

func newTestServer(t *testing.T, rl config.RateLimitConfig) *testServer {
	t.Helper()

	ts := &testServer{
		jwt:        jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp),
		payroll:    &fakePayrollService{},
		attendance: &fakeAttendanceService{today: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		leave:      &fakeLeaveService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.router = NewRouter(
		logger,
		config.AppConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		middleware.NewRateLimiter(rl),
		ts.jwt,
		NewPayrollHandler(ts.payroll),
		NewAttendanceHandler(ts.attendance),
		NewLeaveHandler(ts.leave),
	)
	return ts
}

func defaultTestServer(t *testing.T) *testServer {
	return newTestServer(t, config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100})
}

func (ts *testServer) do(t *testing.T, actor *user.Actor, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, _, err := ts.jwt.GenerateAccessToken(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()

	var raw struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, nil, http.MethodGet, "/api/v1/payroll/runs", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestPayrollHandler_PreviewRun(t *testing.T) {
	ts := defaultTestServer(t)
	body := map[string]interface{}{
		"pay_period_start": "2025-03-01",
		"pay_period_end":   "2025-03-31",
	}

	t.Run("employee is forbidden", func(t *testing.T) {
		rec := ts.do(t, &employeeActor, http.MethodPost, "/api/v1/payroll/runs/preview", body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("manager creates a draft run", func(t *testing.T) {
		rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/preview", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var run payroll.PayrollRunResponse
		env := decodeEnvelope(t, rec, &run)
		assert.True(t, env.Success)
		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, payroll.RunStatusDraft, run.Status)
		assert.Equal(t, managerActor.UserID, ts.payroll.gotCreatorID)
		assert.Equal(t, "2025-03-31", ts.payroll.gotPreview.PayPeriodEnd)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/runs/preview", bytes.NewBufferString("{"))
		token, _, err := ts.jwt.GenerateAccessToken(managerActor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid period maps to 400", func(t *testing.T) {
		ts.payroll.err = fmt.Errorf("%w: pay_period_end is before pay_period_start", payroll.ErrInvalidPeriod)
		defer func() { ts.payroll.err = nil }()

		rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/preview", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPayrollHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"separation of duties", payroll.ErrSeparationOfDuties, http.StatusForbidden},
		{"wrong state", fmt.Errorf("%w: run is PAID", payroll.ErrInvalidStateTransition), http.StatusConflict},
		{"unknown run", payroll.ErrPayrollRunNotFound, http.StatusNotFound},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := defaultTestServer(t)
			ts.payroll.err = tt.err

			rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/finalize", nil)
			assert.Equal(t, tt.want, rec.Code)

			env := decodeEnvelope(t, rec, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
		})
	}
}

func TestPayrollHandler_CapabilityPerTransition(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/finalize", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, managerActor.UserID, ts.payroll.gotApproverID)

	rec = ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/pay", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, &ownerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/pay", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, &employeeActor, http.MethodDelete, "/api/v1/payroll/runs/run-1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, &managerActor, http.MethodDelete, "/api/v1/payroll/runs/run-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPayrollHandler_ListRuns(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &managerActor, http.MethodGet, "/api/v1/payroll/runs?status=APPROVED", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", ts.payroll.gotListStatus)

	rec = ts.do(t, &managerActor, http.MethodGet, "/api/v1/payroll/runs?status=BOGUS", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPayrollHandler_DownloadPayslip(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &employeeActor, http.MethodGet, "/api/v1/payroll/paychecks/pc-1/payslip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-pc-1.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, employeeActor, ts.payroll.gotActor)

	ts.payroll.err = payroll.ErrPaycheckForbidden
	rec = ts.do(t, &employeeActor, http.MethodGet, "/api/v1/payroll/paychecks/pc-2/payslip", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestPayrollHandler_ListMyPaychecksNeedsEmployeeProfile(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &ownerActor, http.MethodGet, "/api/v1/payroll/paychecks/my", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, &employeeActor, http.MethodGet, "/api/v1/payroll/paychecks/my", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var paychecks []payroll.PaycheckResponse
	decodeEnvelope(t, rec, &paychecks)
	require.Len(t, paychecks, 1)
	assert.Equal(t, employeeActor.EmployeeID, paychecks[0].EmployeeID)
}

func TestPayrollHandler_RateLimitsMutations(t *testing.T) {
	ts := newTestServer(t, config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/finalize", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, &managerActor, http.MethodPost, "/api/v1/payroll/runs/run-1/finalize", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec = ts.do(t, &managerActor, http.MethodGet, "/api/v1/payroll/runs/run-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendanceHandler_Clock(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &employeeActor, http.MethodPost, "/api/v1/attendance/clock-in", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, employeeActor.EmployeeID, ts.attendance.gotEmployeeID)

	var record attendance.AttendanceResponse
	decodeEnvelope(t, rec, &record)
	assert.Equal(t, attendance.StatusPresent, record.Status)

	ts.attendance.err = attendance.ErrAlreadyClockedIn
	rec = ts.do(t, &employeeActor, http.MethodPost, "/api/v1/attendance/clock-in", map[string]string{"remarks": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, &ownerActor, http.MethodPost, "/api/v1/attendance/clock-out", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendanceHandler_List(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &employeeActor, http.MethodGet, "/api/v1/attendance/my?start_date=2025-03-01&end_date=2025-03-31", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, employeeActor.EmployeeID, ts.attendance.gotEmployeeID)

	rec = ts.do(t, &employeeActor, http.MethodGet, "/api/v1/attendance/employees/emp-2?start_date=2025-03-01&end_date=2025-03-31", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, &managerActor, http.MethodGet, "/api/v1/attendance/employees/emp-2?start_date=2025-03-01&end_date=2025-03-31", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-2", ts.attendance.gotEmployeeID)

	rec = ts.do(t, &managerActor, http.MethodGet, "/api/v1/attendance/employees/emp-2?start_date=2025-03-31&end_date=2025-03-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAttendanceHandler_Overview(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &managerActor, http.MethodGet, "/api/v1/attendance/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var overview attendance.OverviewResponse
	decodeEnvelope(t, rec, &overview)
	assert.Equal(t, 3, overview.Total)
	assert.Equal(t, overview.Total, overview.Present+overview.Late+overview.OnLeave+overview.Absent)
}

func TestAttendanceHandler_CloseDay(t *testing.T) {
	ts := defaultTestServer(t)

	t.Run("manager lacks the capability", func(t *testing.T) {
		rec := ts.do(t, &managerActor, http.MethodPost, "/api/v1/attendance/close-day", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("defaults to today", func(t *testing.T) {
		rec := ts.do(t, &ownerActor, http.MethodPost, "/api/v1/attendance/close-day", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ts.attendance.today, ts.attendance.gotCloseDate)

		var out attendance.CloseDayResponse
		decodeEnvelope(t, rec, &out)
		assert.Equal(t, "2025-03-10", out.Date)
		assert.Equal(t, 2, out.AbsentInserted)
	})

	t.Run("explicit date", func(t *testing.T) {
		rec := ts.do(t, &ownerActor, http.MethodPost, "/api/v1/attendance/close-day", map[string]string{"date": "2025-03-07"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), ts.attendance.gotCloseDate)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := ts.do(t, &ownerActor, http.MethodPost, "/api/v1/attendance/close-day", map[string]string{"date": "07/03/2025"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLeaveHandler(t *testing.T) {
	ts := defaultTestServer(t)

	rec := ts.do(t, &employeeActor, http.MethodPost, "/api/v1/leave-requests", map[string]string{
		"leave_type": "annual",
		"start_date": "2025-03-12",
		"end_date":   "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, employeeActor.EmployeeID, ts.leave.gotSubmit.EmployeeID)
	assert.Equal(t, "annual", ts.leave.gotSubmit.LeaveType)

	rec = ts.do(t, &employeeActor, http.MethodPut, "/api/v1/leave-requests/leave-1/approve", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, &managerActor, http.MethodPut, "/api/v1/leave-requests/leave-1/approve", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, managerActor, ts.leave.gotDecider)

	rec = ts.do(t, &managerActor, http.MethodGet, "/api/v1/leave-requests?status=PENDING", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
