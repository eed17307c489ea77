package get_client_insights

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
	"github.com/avdk/BMS-SchedulingService/internal/service/analytics"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgMissingEmail      = "email клиента обязателен"
)

type Handler struct {
	service AnalyticsService
	logger  Logger
}

func NewHandler(service AnalyticsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/client-insights
// Query params: email (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessIDStr := vars["businessId"]

	businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/client-insights - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	clientEmail := r.URL.Query().Get("email")
	if clientEmail == "" {
		h.logger.Warn("GET /businesses/{id}/client-insights - Missing email: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgMissingEmail)
		return
	}

	result, err := h.service.GetClientInsights(r.Context(), businessID, clientEmail)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/client-insights - Invalid input: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondBadRequest(w, msgMissingEmail)

		default:
			h.logger.Error("GET /businesses/{id}/client-insights - Failed to get insights: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/client-insights - Insights retrieved successfully: business_id=%d, count=%d",
		businessID, len(result.Insights))
	handlers.RespondJSON(w, http.StatusOK, result)
}
