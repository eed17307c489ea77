package refresh_suggestions

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
)

const msgInvalidBusinessID = "некорректный ID бизнеса"

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

// Handle POST /api/v1/businesses/{businessId}/suggestions/refresh
// Пересчёт аналитики запускается сотрудником вручную
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessIDStr := vars["businessId"]

	businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/suggestions/refresh - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	result, err := h.service.RefreshSuggestions(r.Context(), businessID)
	if err != nil {
		h.logger.Error("POST /businesses/{id}/suggestions/refresh - Failed to refresh: business_id=%d, error=%v",
			businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /businesses/{id}/suggestions/refresh - Analytics refreshed successfully: business_id=%d, created=%d, insights=%d",
		businessID, result.Created, result.InsightsComputed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
