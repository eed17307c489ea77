package accept_suggestion

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
	msgInvalidSuggestionID = "некорректный ID рекомендации"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgNotFound            = "рекомендация не найдена"
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

// Handle PATCH /api/v1/suggestions/{suggestionId}/accept
// Тело запроса: {"accepted": true|false}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	suggestionIDStr := vars["suggestionId"]

	suggestionID, err := strconv.ParseInt(suggestionIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /suggestions/{id}/accept - Invalid suggestion ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSuggestionID)
		return
	}

	var req models.AcceptSuggestionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /suggestions/{id}/accept - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.AcceptSuggestion(r.Context(), suggestionID, &req); err != nil {
		switch {
		case errors.Is(err, analytics.ErrSuggestionNotFound):
			h.logger.Warn("PATCH /suggestions/{id}/accept - Suggestion not found: suggestion_id=%d", suggestionID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("PATCH /suggestions/{id}/accept - Failed to accept: suggestion_id=%d, error=%v",
				suggestionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /suggestions/{id}/accept - Suggestion marked successfully: suggestion_id=%d, accepted=%v",
		suggestionID, req.Accepted)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
