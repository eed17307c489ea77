package create_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	// EndTime опционально - при отсутствии вычисляется из длительности услуги
	if !req.EndTime.IsZero() {
		if err := req.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime format: %v", ErrInvalidInput, err)
		}
		if !req.StartTime.IsBefore(req.EndTime) {
			return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
		}
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: clientName is too long", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ClientEmail) == "" {
		return fmt.Errorf("%w: clientEmail is required", ErrInvalidInput)
	}

	if req.StaffNotes != nil && len(*req.StaffNotes) > domain.MaxStaffNotesLength {
		return fmt.Errorf("%w: staffNotes is too long", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата записи не в прошлом.
// Запись на прошедшую дату отклоняется всегда, независимо от доступности слота.
func validateDate(date, now time.Time) error {
	if isDateInPast(date, now) {
		return ErrPastDate
	}
	return nil
}

// validateWithinWorkingHours проверяет, что интервал записи целиком лежит
// в рабочих часах шаблона дня
func validateWithinWorkingHours(start, end types.TimeString, tpl *domain.WeekdayTemplate) error {
	if start.IsBefore(tpl.OpenTime) {
		return fmt.Errorf("%w: starts before opening at %s", ErrOutsideBusinessHours, tpl.OpenTime)
	}
	if end.IsAfter(tpl.CloseTime) {
		return fmt.Errorf("%w: ends after closing at %s", ErrOutsideBusinessHours, tpl.CloseTime)
	}
	return nil
}

// countConflicts подсчитывает активные записи, пересекающиеся с интервалом
// на том же ресурсе. Запись без ресурса блокирует общий календарь целиком.
func countConflicts(interval domain.Interval, resourceID *int64, appointments []*domain.Appointment) int {
	count := 0

	for _, appt := range appointments {
		if !appt.HoldsSlot() {
			continue
		}
		if !resourceMatches(appt.ResourceID, resourceID) {
			continue
		}

		apptInterval := domain.Interval{Start: appt.StartTime, End: appt.EndTime}
		// Строгие неравенства: граничащие интервалы не конфликтуют
		if interval.Overlaps(apptInterval) {
			count++
		}
	}

	return count
}

// resourceMatches определяет, относятся ли запись и запрос к одному ресурсу.
// nil с любой стороны означает общий календарь и сталкивается со всеми.
func resourceMatches(apptResource, requested *int64) bool {
	if apptResource == nil || requested == nil {
		return true
	}
	return *apptResource == *requested
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
