package update_day_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
	"github.com/avdk/BMS-SchedulingService/internal/service/schedule"
	"github.com/avdk/BMS-SchedulingService/internal/service/schedule/models"
)

const (
	msgInvalidBusinessID   = "некорректный ID бизнеса"
	msgInvalidWeekday      = "некорректный день недели, ожидается число от 0 (воскресенье) до 6 (суббота)"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidTimeWindow   = "время открытия должно быть раньше времени закрытия"
	msgInvalidSlotDuration = "некорректная длительность слота"
	msgInvalidInput        = "некорректные данные расписания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/schedule/{weekday}
// Шаблон дня перезаписывается целиком
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessIDStr := vars["businessId"]
	businessID, err := strconv.ParseInt(businessIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	weekdayStr := vars["weekday"]
	weekday, err := strconv.Atoi(weekdayStr)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid weekday: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	var req UpdateDayScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq := &models.SetDayScheduleRequest{
		BusinessID:          businessID,
		Weekday:             weekday,
		IsOpen:              req.IsOpen,
		OpenTime:            req.OpenTime,
		CloseTime:           req.CloseTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
	}

	result, err := h.service.SetDaySchedule(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidWeekday):
			h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid weekday: business_id=%d, weekday=%d",
				businessID, weekday)
			handlers.RespondBadRequest(w, msgInvalidWeekday)

		case errors.Is(err, schedule.ErrInvalidTimeWindow):
			h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid time window: business_id=%d, weekday=%d",
				businessID, weekday)
			handlers.RespondBadRequest(w, msgInvalidTimeWindow)

		case errors.Is(err, schedule.ErrInvalidSlotDuration):
			h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid slot duration: business_id=%d, weekday=%d",
				businessID, weekday)
			handlers.RespondBadRequest(w, msgInvalidSlotDuration)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/schedule/{weekday} - Invalid input: business_id=%d, weekday=%d, error=%v",
				businessID, weekday, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /businesses/{id}/schedule/{weekday} - Failed to update schedule: business_id=%d, weekday=%d, error=%v",
				businessID, weekday, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/schedule/{weekday} - Schedule updated successfully: business_id=%d, weekday=%d",
		businessID, weekday)
	handlers.RespondJSON(w, http.StatusOK, result)
}
