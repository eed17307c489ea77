package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/internal/service/schedule/models"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// Service сервис недельного расписания бизнеса.
// Шаблон дня недели всегда перезаписывается целиком: частичных
// обновлений нет, прошлые записи при этом не трогаются.
type Service struct {
	availabilityRepo AvailabilityRepository
	appointmentRepo  AppointmentRepository
	suggestionRepo   SuggestionRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	availabilityRepo AvailabilityRepository,
	appointmentRepo AppointmentRepository,
	suggestionRepo SuggestionRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		suggestionRepo:   suggestionRepo,
		timeProvider:     timeProvider,
		logger:           logger,
	}
}

// SetDaySchedule полностью перезаписывает шаблон дня недели.
// Уже одобренные будущие записи, выпадающие из нового окна, не отменяются:
// они помечаются рекомендацией для ручного разбора сотрудниками.
func (s *Service) SetDaySchedule(ctx context.Context, req *models.SetDayScheduleRequest) (*models.DayScheduleResponse, error) {
	s.logger.Info("SetDaySchedule: updating schedule for business=%d, weekday=%d", req.BusinessID, req.Weekday)

	// 1. Валидация входных данных
	if err := s.validateRequest(req); err != nil {
		s.logger.Warn("SetDaySchedule: validation failed for business=%d, weekday=%d: %v",
			req.BusinessID, req.Weekday, err)
		return nil, err
	}

	tpl := req.ToDomainTemplate()

	// 2. Перезаписываем шаблон
	saved, err := s.availabilityRepo.Upsert(ctx, tpl)
	if err != nil {
		s.logger.Error("SetDaySchedule: repository error for business=%d, weekday=%d: %v",
			req.BusinessID, req.Weekday, err)
		return nil, fmt.Errorf("%w: SetDaySchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetDaySchedule: successfully updated schedule for business=%d, weekday=%s",
		req.BusinessID, saved.Weekday)

	// 3. Помечаем будущие одобренные записи, выпавшие из нового окна
	s.flagOrphanedAppointments(ctx, saved)

	return models.FromDomainTemplate(saved), nil
}

// GetWeekSchedule возвращает полное недельное расписание бизнеса.
// Ответ всегда содержит 7 дней: дни без явного шаблона считаются закрытыми.
func (s *Service) GetWeekSchedule(ctx context.Context, businessID int64) (*models.WeekScheduleResponse, error) {
	s.logger.Info("GetWeekSchedule: fetching schedule for business=%d", businessID)

	templates, err := s.availabilityRepo.GetWeek(ctx, businessID)
	if err != nil {
		s.logger.Error("GetWeekSchedule: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetWeekSchedule - repository error: %v", ErrInternal, err)
	}

	byWeekday := make(map[domain.Weekday]*domain.WeekdayTemplate, len(templates))
	for _, tpl := range templates {
		byWeekday[tpl.Weekday] = tpl
	}

	resp := &models.WeekScheduleResponse{
		BusinessID: businessID,
		Days:       make([]models.DayScheduleResponse, 0, 7),
	}

	for wd := domain.Sunday; wd <= domain.Saturday; wd++ {
		tpl, ok := byWeekday[wd]
		if !ok {
			tpl = domain.ClosedTemplate(businessID, wd)
		}
		resp.Days = append(resp.Days, *models.FromDomainTemplate(tpl))
	}

	s.logger.Info("GetWeekSchedule: successfully fetched schedule for business=%d (%d explicit days)",
		businessID, len(templates))
	return resp, nil
}

// Вспомогательные методы

// validateRequest валидирует запрос на перезапись шаблона
func (s *Service) validateRequest(req *models.SetDayScheduleRequest) error {
	if !domain.Weekday(req.Weekday).Valid() {
		return fmt.Errorf("%w: weekday must be between 0 (Sunday) and 6 (Saturday)", ErrInvalidWeekday)
	}

	if req.SlotDurationMinutes != 0 {
		if req.SlotDurationMinutes < domain.MinSlotDurationMinutes || req.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
			return fmt.Errorf("%w: slotDurationMinutes must be between %d and %d",
				ErrInvalidSlotDuration, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
		}
	}

	// Рабочее окно проверяем только для открытого дня
	if !req.IsOpen {
		return nil
	}

	openTime, err := types.NewTimeStringFromString(req.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: invalid openTime: %v", ErrInvalidInput, err)
	}
	closeTime, err := types.NewTimeStringFromString(req.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: invalid closeTime: %v", ErrInvalidInput, err)
	}

	if !openTime.IsBefore(closeTime) {
		return fmt.Errorf("%w: openTime must be before closeTime", ErrInvalidTimeWindow)
	}

	return nil
}

// flagOrphanedAppointments находит будущие одобренные записи, не помещающиеся
// в новое рабочее окно, и создаёт по ним рекомендацию типа schedule.
// Сбой здесь не откатывает обновление расписания.
func (s *Service) flagOrphanedAppointments(ctx context.Context, tpl *domain.WeekdayTemplate) {
	now := s.timeProvider.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	appointments, err := s.appointmentRepo.GetApprovedByWeekdayFromDate(ctx, tpl.BusinessID, tpl.Weekday, today)
	if err != nil {
		s.logger.Error("flagOrphanedAppointments: failed to fetch approved appointments for business=%d, weekday=%s: %v",
			tpl.BusinessID, tpl.Weekday, err)
		return
	}

	var orphaned []*domain.Appointment
	for _, appt := range appointments {
		if !fitsTemplate(appt, tpl) {
			orphaned = append(orphaned, appt)
		}
	}

	if len(orphaned) == 0 {
		return
	}

	for _, appt := range orphaned {
		s.logger.Warn("flagOrphanedAppointments: approved appointment id=%d (%s %s-%s) no longer fits %s schedule of business=%d",
			appt.ID, appt.Date.Format(domain.DateFormat), appt.StartTime, appt.EndTime, tpl.Weekday, tpl.BusinessID)
	}

	suggestion := &domain.SchedulingSuggestion{
		BusinessID: tpl.BusinessID,
		Type:       domain.SuggestionSchedule,
		Suggestion: fmt.Sprintf("Свяжитесь с клиентами: %d подтверждённых записей выпали из нового расписания на %s", len(orphaned), tpl.Weekday),
		Reasoning:  orphanedReasoning(orphaned, tpl),
		Priority:   5,
	}

	if _, err := s.suggestionRepo.Create(ctx, suggestion); err != nil {
		s.logger.Error("flagOrphanedAppointments: failed to create suggestion for business=%d: %v", tpl.BusinessID, err)
		return
	}

	s.logger.Info("flagOrphanedAppointments: flagged %d orphaned appointments for business=%d, weekday=%s",
		len(orphaned), tpl.BusinessID, tpl.Weekday)
}

// fitsTemplate проверяет, помещается ли запись в рабочее окно шаблона
func fitsTemplate(appt *domain.Appointment, tpl *domain.WeekdayTemplate) bool {
	if !tpl.IsOpen {
		return false
	}
	if appt.StartTime.IsBefore(tpl.OpenTime) {
		return false
	}
	if tpl.CloseTime.IsBefore(appt.EndTime) {
		return false
	}
	return true
}

// orphanedReasoning собирает текст обоснования по затронутым записям
func orphanedReasoning(orphaned []*domain.Appointment, tpl *domain.WeekdayTemplate) string {
	window := "closed"
	if tpl.IsOpen {
		window = fmt.Sprintf("%s-%s", tpl.OpenTime, tpl.CloseTime)
	}

	msg := fmt.Sprintf("New %s window is %s. Affected appointments:", tpl.Weekday, window)
	for _, appt := range orphaned {
		msg += fmt.Sprintf(" #%d on %s at %s-%s;", appt.ID, appt.Date.Format(domain.DateFormat), appt.StartTime, appt.EndTime)
	}
	return msg
}
