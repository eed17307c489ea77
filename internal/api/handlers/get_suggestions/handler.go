package get_suggestions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
	"github.com/avdk/BMS-SchedulingService/internal/service/analytics"
	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidType       = "некорректный тип рекомендации"
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

// Handle GET /api/v1/businesses/{businessId}/suggestions
// Query params: type (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessIDStr := vars["businessId"]

	businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/suggestions - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	req := &models.ListSuggestionsRequest{BusinessID: businessID}
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		req.Type = &typeStr
	}

	result, err := h.service.ListSuggestions(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/suggestions - Invalid type: business_id=%d, type=%v",
				businessID, req.Type)
			handlers.RespondBadRequest(w, msgInvalidType)

		default:
			h.logger.Error("GET /businesses/{id}/suggestions - Failed to get suggestions: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/suggestions - Suggestions retrieved successfully: business_id=%d, count=%d",
		businessID, len(result.Suggestions))
	handlers.RespondJSON(w, http.StatusOK, result)
}
