package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	availabilityRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/availability"
)

// UseCase use case получения слотов дня с флагами доступности
type UseCase struct {
	appointmentRepo  AppointmentRepository
	availabilityRepo AvailabilityRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	availabilityRepo AvailabilityRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, date=%s, resource=%v",
		req.BusinessID, req.Date.Format(domain.DateFormat), req.ResourceID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем шаблон расписания на день недели запрошенной даты
	weekday := domain.WeekdayOf(req.Date)
	tpl, err := uc.availabilityRepo.GetByBusinessAndWeekday(ctx, req.BusinessID, weekday)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrTemplateNotFound) {
			// Нет явного шаблона - день считается закрытым
			tpl = domain.ClosedTemplate(req.BusinessID, weekday)
		} else {
			uc.logger.Error("GetAvailableSlots: failed to get template: %v", err)
			return nil, fmt.Errorf("%w: failed to get weekday template: %v", ErrInternal, err)
		}
	}

	// 3. Генерируем слоты дня по шаблону
	slots, err := generateSlots(tpl)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	if len(slots) == 0 {
		uc.logger.Info("GetAvailableSlots: business=%d is closed on %s (%s)",
			req.BusinessID, req.Date.Format(domain.DateFormat), weekday)
		return &Response{
			BusinessID: req.BusinessID,
			Date:       req.Date,
			ResourceID: req.ResourceID,
			IsOpen:     false,
			Slots:      []domain.Slot{},
		}, nil
	}

	// 4. Получаем активные записи на эту дату.
	// Фильтр по ресурсу не задаём: запись без ресурса занимает общий
	// календарь и должна блокировать слоты любого мастера
	filter := domain.AppointmentsFilter{
		BusinessID:      req.BusinessID,
		StartDate:       &req.Date,
		EndDate:         &req.Date,
		IncludeInactive: false,
	}

	appointments, err := uc.appointmentRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 5. Помечаем занятые слоты
	slots = markAvailability(slots, appointments, req.ResourceID)

	uc.logger.Info("GetAvailableSlots: generated %d slots for business=%d, date=%s",
		len(slots), req.BusinessID, req.Date.Format(domain.DateFormat))

	return &Response{
		BusinessID: req.BusinessID,
		Date:       req.Date,
		ResourceID: req.ResourceID,
		IsOpen:     true,
		Slots:      slots,
	}, nil
}
