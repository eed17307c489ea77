package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	appointmentRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/appointment"
	"github.com/avdk/BMS-SchedulingService/internal/integrations/notifier"
	"github.com/avdk/BMS-SchedulingService/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей.
// Отвечает за переходы статусов: pending -> approved/declined,
// approved -> completed/cancelled. Терминальные статусы неизменяемы.
type Service struct {
	appointmentRepo AppointmentRepository
	notifierClient  NotifierClient
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	notifierClient NotifierClient,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		notifierClient:  notifierClient,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// GetBusinessAppointments получает записи бизнеса с гибкой фильтрацией.
// Поддерживает фильтрацию по мастеру, периоду, статусу и email клиента.
// По умолчанию возвращаются только активные (pending/approved) записи,
// IncludeInactive добавляет терминальные записи в выборку.
func (s *Service) GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	// Логируем запрос с деталями фильтрации
	logMsg := fmt.Sprintf("GetBusinessAppointments: fetching appointments for business=%d", req.BusinessID)
	if req.ResourceID != nil {
		logMsg += fmt.Sprintf(", resource=%d", *req.ResourceID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBusinessAppointments: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessAppointments: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBusinessAppointments: successfully fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Approve одобряет ожидающую запись.
// Допустимо только для записей в статусе pending.
func (s *Service) Approve(ctx context.Context, id int64, req *models.ApproveAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Approve: approving appointment id=%d", id)

	// Валидация заметок сотрудника
	if req.StaffNotes != nil && len(*req.StaffNotes) > domain.MaxStaffNotesLength {
		s.logger.Warn("Approve: staff notes too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: staff notes must not exceed %d characters", ErrInvalidInput, domain.MaxStaffNotesLength)
	}

	appt, err := s.getForTransition(ctx, "Approve", id)
	if err != nil {
		return nil, err
	}

	// Проверяем допустимость перехода
	if !appt.CanBeApproved() {
		s.logger.Warn("Approve: appointment id=%d cannot be approved, status=%s", id, appt.Status)
		return nil, ErrInvalidTransition
	}

	// Обновляем статус. Условие status=pending в репозитории страхует
	// от гонки с параллельным approve/decline.
	if err := s.appointmentRepo.Approve(ctx, id, req.StaffNotes); err != nil {
		return nil, s.mapTransitionError("Approve", id, err)
	}

	updated, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Approve: failed to re-fetch appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Approve - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Approve: successfully approved appointment id=%d", id)

	// Уведомляем клиента. Сбой доставки не откатывает одобрение.
	s.notify(ctx, notifier.EventAppointmentApproved, updated, nil)

	return models.FromDomainAppointment(updated), nil
}

// Decline отклоняет ожидающую запись. Причина отклонения обязательна,
// она сохраняется в записи и отправляется клиенту в уведомлении.
func (s *Service) Decline(ctx context.Context, id int64, req *models.DeclineAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Decline: declining appointment id=%d", id)

	// Причина отклонения обязательна
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		s.logger.Warn("Decline: empty reason for appointment id=%d", id)
		return nil, fmt.Errorf("%w: decline reason is required", ErrInvalidInput)
	}
	if len(reason) > domain.MaxDeclineReasonLength {
		s.logger.Warn("Decline: reason too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: decline reason must not exceed %d characters", ErrInvalidInput, domain.MaxDeclineReasonLength)
	}

	appt, err := s.getForTransition(ctx, "Decline", id)
	if err != nil {
		return nil, err
	}

	if !appt.CanBeDeclined() {
		s.logger.Warn("Decline: appointment id=%d cannot be declined, status=%s", id, appt.Status)
		return nil, ErrInvalidTransition
	}

	if err := s.appointmentRepo.Decline(ctx, id, reason); err != nil {
		return nil, s.mapTransitionError("Decline", id, err)
	}

	updated, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Decline: failed to re-fetch appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Decline - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Decline: successfully declined appointment id=%d", id)

	s.notify(ctx, notifier.EventAppointmentDeclined, updated, &reason)

	return models.FromDomainAppointment(updated), nil
}

// Complete помечает одобренную запись как завершённую.
// Завершённые записи остаются в истории и питают аналитику.
func (s *Service) Complete(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Complete: completing appointment id=%d", id)
	return s.transition(ctx, "Complete", id, domain.StatusApproved, domain.StatusCompleted)
}

// Cancel отменяет одобренную запись. Слот освобождается,
// сама запись сохраняется как история.
func (s *Service) Cancel(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d", id)
	return s.transition(ctx, "Cancel", id, domain.StatusApproved, domain.StatusCancelled)
}

// Вспомогательные методы

// transition выполняет переход статуса from -> to с предварительной проверкой
func (s *Service) transition(ctx context.Context, method string, id int64, from, to domain.AppointmentStatus) (*models.AppointmentResponse, error) {
	appt, err := s.getForTransition(ctx, method, id)
	if err != nil {
		return nil, err
	}

	if appt.Status != from {
		s.logger.Warn("%s: appointment id=%d is in status=%s, expected %s", method, id, appt.Status, from)
		return nil, ErrInvalidTransition
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, s.mapTransitionError(method, id, err)
	}

	updated, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("%s: failed to re-fetch appointment id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	s.logger.Info("%s: successfully moved appointment id=%d to status=%s", method, id, to)
	return models.FromDomainAppointment(updated), nil
}

// getForTransition получает запись и мапит ошибку not found
func (s *Service) getForTransition(ctx context.Context, method string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", method, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return appt, nil
}

// mapTransitionError мапит ошибки репозитория при смене статуса
func (s *Service) mapTransitionError(method string, id int64, err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrStatusConflict):
		// Параллельный запрос успел изменить статус первым
		s.logger.Warn("%s: concurrent status change detected for appointment id=%d", method, id)
		return ErrInvalidTransition
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		s.logger.Warn("%s: appointment id=%d not found during update", method, id)
		return ErrAppointmentNotFound
	default:
		s.logger.Error("%s: repository error for appointment id=%d: %v", method, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
}

// notify отправляет уведомление клиенту о смене статуса записи
func (s *Service) notify(ctx context.Context, event notifier.Event, appt *domain.Appointment, reason *string) {
	n := notifier.Notification{
		Event:         event,
		AppointmentID: appt.ID,
		BusinessID:    appt.BusinessID,
		ClientName:    appt.ClientName,
		ClientEmail:   appt.ClientEmail,
		ClientPhone:   appt.ClientPhone,
		Date:          appt.Date.Format(domain.DateFormat),
		StartTime:     appt.StartTime.String(),
		ServiceName:   appt.ServiceName,
		Reason:        reason,
	}

	if err := s.notifierClient.Send(ctx, n); err != nil {
		s.logger.Warn("notify: failed to send %s notification for appointment id=%d: %v", event, appt.ID, err)
	}
}
