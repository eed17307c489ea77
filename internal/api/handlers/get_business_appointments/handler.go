package get_business_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/internal/service/appointments"
	"github.com/avdk/BMS-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidResourceID = "некорректный ID мастера"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus     = "некорректный статус записи"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/appointments
// Query params (все опциональны): resourceId, startDate, endDate, status,
// clientEmail, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessIDStr := vars["businessId"]

	businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/appointments - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	req, err := parseFilters(businessID, r)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/appointments - Invalid filters: business_id=%d, error=%v", businessID, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.GetBusinessAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/appointments - Invalid input: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /businesses/{id}/appointments - Failed to get appointments: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/appointments - Appointments retrieved successfully: business_id=%d, count=%d",
		businessID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseFilters собирает фильтры выборки из query параметров
func parseFilters(businessID int64, r *http.Request) (*models.GetBusinessAppointmentsRequest, error) {
	query := r.URL.Query()

	req := &models.GetBusinessAppointmentsRequest{
		BusinessID: businessID,
	}

	if resourceIDStr := query.Get("resourceId"); resourceIDStr != "" {
		resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
		if err != nil {
			return nil, errors.New(msgInvalidResourceID)
		}
		req.ResourceID = &resourceID
	}

	if startDateStr := query.Get("startDate"); startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, errors.New(msgInvalidDate)
		}
		req.StartDate = &startDate
	}

	if endDateStr := query.Get("endDate"); endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, errors.New(msgInvalidDate)
		}
		req.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if clientEmail := query.Get("clientEmail"); clientEmail != "" {
		req.ClientEmail = &clientEmail
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	return req, nil
}
