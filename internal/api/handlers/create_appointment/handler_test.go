package create_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	createAppointment "github.com/avdk/BMS-SchedulingService/internal/usecase/create_appointment"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeUseCase struct {
	gotReq *createAppointment.Request
	resp   *createAppointment.Response
	err    error
}

func (uc *fakeUseCase) Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	uc.gotReq = req
	if uc.err != nil {
		return nil, uc.err
	}
	return uc.resp, nil
}

const validBody = `{
	"businessId": 1,
	"serviceId": 5,
	"date": "2026-09-07",
	"startTime": "10:00",
	"endTime": "10:30",
	"clientName": "Иван Петров",
	"clientEmail": "ivan@example.com"
}`

func successResponse() *createAppointment.Response {
	return &createAppointment.Response{
		ID:          7,
		BusinessID:  1,
		ServiceID:   5,
		Date:        time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "10:30",
		Status:      "pending",
		ClientName:  "Иван Петров",
		ClientEmail: "ivan@example.com",
	}
}

func doRequest(t *testing.T, uc *fakeUseCase, body string, staffID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if staffID != "" {
		req.Header.Set("X-User-ID", staffID)
	}

	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	t.Run("anonymous request is a direct booking", func(t *testing.T) {
		uc := &fakeUseCase{resp: successResponse()}

		rec := doRequest(t, uc, validBody, "")
		assert.Equal(t, http.StatusCreated, rec.Code)

		require.NotNil(t, uc.gotReq)
		assert.True(t, uc.gotReq.IsDirectBooking)
	})

	t.Run("staff header makes booking trusted", func(t *testing.T) {
		uc := &fakeUseCase{resp: successResponse()}

		rec := doRequest(t, uc, validBody, "42")
		assert.Equal(t, http.StatusCreated, rec.Code)

		require.NotNil(t, uc.gotReq)
		assert.False(t, uc.gotReq.IsDirectBooking)
	})

	t.Run("malformed staff header is treated as anonymous", func(t *testing.T) {
		uc := &fakeUseCase{resp: successResponse()}

		doRequest(t, uc, validBody, "abc")
		require.NotNil(t, uc.gotReq)
		assert.True(t, uc.gotReq.IsDirectBooking)
	})

	t.Run("created response body", func(t *testing.T) {
		uc := &fakeUseCase{resp: successResponse()}

		rec := doRequest(t, uc, validBody, "")
		assert.Contains(t, rec.Body.String(), `"id":7`)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
		assert.Contains(t, rec.Body.String(), `"date":"2026-09-07"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := doRequest(t, uc, `{"businessId": `, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, uc.gotReq)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := doRequest(t, uc, `{"businessId": 1, "surprise": true}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		uc := &fakeUseCase{}

		body := strings.Replace(validBody, "2026-09-07", "07.09.2026", 1)
		rec := doRequest(t, uc, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, uc.gotReq)
	})

	t.Run("use case errors map to statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{name: "slot conflict", err: createAppointment.ErrSlotConflict, wantStatus: http.StatusConflict},
			{name: "service not found", err: createAppointment.ErrServiceNotFound, wantStatus: http.StatusNotFound},
			{name: "past date", err: createAppointment.ErrPastDate, wantStatus: http.StatusBadRequest},
			{name: "business closed", err: createAppointment.ErrBusinessClosed, wantStatus: http.StatusBadRequest},
			{name: "outside hours", err: createAppointment.ErrOutsideBusinessHours, wantStatus: http.StatusBadRequest},
			{name: "invalid input", err: createAppointment.ErrInvalidInput, wantStatus: http.StatusBadRequest},
			{name: "internal", err: createAppointment.ErrInternal, wantStatus: http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(t, &fakeUseCase{err: tt.err}, validBody, "")
				assert.Equal(t, tt.wantStatus, rec.Code)
			})
		}
	})
}
