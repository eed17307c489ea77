package create_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
	createAppointment "github.com/avdk/BMS-SchedulingService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgServiceNotFound    = "услуга не найдена"
	msgPastDate           = "дата записи уже прошла"
	msgBusinessClosed     = "бизнес закрыт в выбранную дату"
	msgOutsideHours       = "выбранное время вне рабочих часов"
	msgSlotConflict       = "выбранное время уже занято"
	msgInvalidInput       = "некорректные данные записи"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
// Эндпоинт публичный: без заголовка X-User-ID запись считается прямой
// (из виджета самозаписи) и создаётся в статусе pending.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Запись от сотрудника приходит с валидным X-User-ID
	isDirectBooking := !hasStaffHeader(r)

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(isDirectBooking)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: business_id=%d, date=%s, start=%s",
				req.BusinessID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: business_id=%d, service_id=%d",
				req.BusinessID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrPastDate):
			h.logger.Warn("POST /appointments - Past date: business_id=%d, date=%s", req.BusinessID, req.Date)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, createAppointment.ErrBusinessClosed):
			h.logger.Warn("POST /appointments - Business closed: business_id=%d, date=%s", req.BusinessID, req.Date)
			handlers.RespondBadRequest(w, msgBusinessClosed)

		case errors.Is(err, createAppointment.ErrOutsideBusinessHours):
			h.logger.Warn("POST /appointments - Outside business hours: business_id=%d, date=%s, start=%s",
				req.BusinessID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: business_id=%d, error=%v", req.BusinessID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: business_id=%d, error=%v",
				req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, business_id=%d, status=%s",
		result.ID, req.BusinessID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

// hasStaffHeader проверяет наличие валидного X-User-ID
func hasStaffHeader(r *http.Request) bool {
	userIDStr := r.Header.Get("X-User-ID")
	if userIDStr == "" {
		return false
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	return err == nil && userID > 0
}
