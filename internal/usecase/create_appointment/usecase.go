package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	availabilityRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/availability"
	"github.com/avdk/BMS-SchedulingService/internal/integrations/notifier"
	catalogClient "github.com/avdk/BMS-SchedulingService/internal/integrations/servicecatalog"
)

// UseCase use case создания записи на приём.
// Проверка конфликта и вставка выполняются в одной сериализуемой транзакции
// с блокировкой записей дня (FOR UPDATE) - на интервал (бизнес, дата, ресурс,
// время) может успешно претендовать не более одной записи.
type UseCase struct {
	appointmentRepo  AppointmentRepository
	availabilityRepo AvailabilityRepository
	catalogClient    ServiceCatalogClient
	notifierClient   NotifierClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	availabilityRepo AvailabilityRepository,
	catalogClient ServiceCatalogClient,
	notifierClient NotifierClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		catalogClient:    catalogClient,
		notifierClient:   notifierClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: business=%d, service=%d, date=%s, time=%s, direct=%t",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.IsDirectBooking)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Прошедшие даты отклоняем до любых обращений к БД
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateAppointment: past date %s", req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 4. Получаем услугу из каталога (название, длительность, цена)
	service, err := uc.catalogClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Если конец интервала не задан, вычисляем его из длительности услуги
	endTime := req.EndTime
	if endTime.IsZero() {
		duration := service.DurationMinutes
		if duration <= 0 {
			duration = domain.DefaultSlotDurationMinutes
		}
		endTime, err = req.StartTime.AddMinutes(duration)
		if err != nil {
			uc.logger.Warn("CreateAppointment: cannot size interval from service duration: %v", err)
			return nil, fmt.Errorf("%w: interval exceeds the day: %v", ErrInvalidInput, err)
		}
	}

	var result *domain.Appointment

	// 6. Критическая секция: проверка конфликта + вставка в одной
	// сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Получаем шаблон расписания на день недели.
		// Без явного шаблона действует floor рабочих часов 9-19.
		weekday := domain.WeekdayOf(req.Date)
		tpl, err := uc.availabilityRepo.GetByBusinessAndWeekday(txCtx, req.BusinessID, weekday)
		if err != nil {
			if !errors.Is(err, availabilityRepo.ErrTemplateNotFound) {
				uc.logger.Error("CreateAppointment: failed to get template: %v", err)
				return fmt.Errorf("%w: failed to get weekday template: %w", ErrInternal, err)
			}
			tpl = domain.DefaultTemplate(req.BusinessID, weekday)
			uc.logger.Info("CreateAppointment: no template for %s, using default %s-%s hours",
				weekday, tpl.OpenTime, tpl.CloseTime)
		}

		// 6.2. Закрытый день
		if !tpl.IsOpen {
			uc.logger.Warn("CreateAppointment: business=%d is closed on %s", req.BusinessID, weekday)
			return ErrBusinessClosed
		}

		// 6.3. Интервал должен целиком лежать в рабочих часах
		if err := validateWithinWorkingHours(req.StartTime, endTime, tpl); err != nil {
			uc.logger.Warn("CreateAppointment: %v", err)
			return err
		}

		// 6.4. Получаем все активные записи на дату с блокировкой (FOR UPDATE)
		filter := domain.AppointmentsFilter{
			BusinessID:      req.BusinessID,
			StartDate:       &req.Date,
			EndDate:         &req.Date,
			IncludeInactive: false,
		}

		appointments, err := uc.appointmentRepo.GetByBusinessWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 6.5. Повторная проверка конфликта на живом наборе записей
		interval := domain.Interval{Start: req.StartTime, End: endTime}
		if conflicts := countConflicts(interval, req.ResourceID, appointments); conflicts > 0 {
			uc.logger.Warn("CreateAppointment: slot %s-%s already taken (%d conflicts)",
				req.StartTime, endTime, conflicts)
			return ErrSlotConflict
		}

		// 6.6. Создаем запись. Staff-записи доверенные и сразу approved,
		// прямые записи клиентов ждут одобрения в pending
		appt := &domain.Appointment{
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			ResourceID:      req.ResourceID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			EndTime:         endTime,
			Status:          domain.InitialStatus(req.IsDirectBooking),
			ClientName:      req.ClientName,
			ClientEmail:     req.ClientEmail,
			ClientPhone:     req.ClientPhone,
			IsDirectBooking: req.IsDirectBooking,
			StaffNotes:      req.StaffNotes,
			ServiceName:     service.Name,
			ServicePrice:    getServicePrice(service),
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d status=%s",
		result.ID, result.Status)

	// 7. Уведомление после фиксации транзакции.
	// Сбой доставки не откатывает созданную запись
	uc.notify(ctx, result)

	return toResponse(result), nil
}

// notify отправляет уведомление о созданной записи; ошибки только логируются
func (uc *UseCase) notify(ctx context.Context, appt *domain.Appointment) {
	n := notifier.Notification{
		Event:         notifier.EventAppointmentCreated,
		AppointmentID: appt.ID,
		BusinessID:    appt.BusinessID,
		ClientName:    appt.ClientName,
		ClientEmail:   appt.ClientEmail,
		ClientPhone:   appt.ClientPhone,
		Date:          appt.Date.Format(domain.DateFormat),
		StartTime:     appt.StartTime.String(),
		ServiceName:   appt.ServiceName,
	}

	if err := uc.notifierClient.Send(ctx, n); err != nil {
		uc.logger.Warn("CreateAppointment: notification failed for appointment id=%d: %v", appt.ID, err)
	}
}

// getServicePrice извлекает цену из услуги; nil означает 0.0
func getServicePrice(service *catalogClient.Service) float64 {
	if service.Price == nil {
		return 0.0
	}
	return *service.Price
}

func toResponse(appt *domain.Appointment) *Response {
	return &Response{
		ID:              appt.ID,
		BusinessID:      appt.BusinessID,
		ServiceID:       appt.ServiceID,
		ResourceID:      appt.ResourceID,
		Date:            appt.Date,
		StartTime:       appt.StartTime,
		EndTime:         appt.EndTime,
		Status:          string(appt.Status),
		ClientName:      appt.ClientName,
		ClientEmail:     appt.ClientEmail,
		ClientPhone:     appt.ClientPhone,
		IsDirectBooking: appt.IsDirectBooking,
		StaffNotes:      appt.StaffNotes,
		ServiceName:     appt.ServiceName,
		ServicePrice:    appt.ServicePrice,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}
}
