package get_available_slots

import (
	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

// generateSlots генерирует полную последовательность слотов дня по шаблону.
// Курсор стартует от времени открытия и двигается с фиксированным шагом
// slotDuration, пока конец слота помещается до закрытия. Неполный хвостовой
// слот не эмитится. Для закрытого дня последовательность пуста.
//
// Генерация детерминирована: один и тот же шаблон всегда даёт одну и ту же
// последовательность, поэтому слоты пересчитываются на каждый запрос и
// никогда не кешируются и не сохраняются.
func generateSlots(tpl *domain.WeekdayTemplate) ([]domain.Slot, error) {
	if !tpl.IsOpen || tpl.OpenTime.IsZero() || tpl.CloseTime.IsZero() {
		return []domain.Slot{}, nil
	}

	duration := tpl.SlotDurationMinutes
	if duration <= 0 {
		duration = domain.DefaultSlotDurationMinutes
	}

	slots := make([]domain.Slot, 0)
	cursor := tpl.OpenTime

	for cursor.IsBefore(tpl.CloseTime) {
		slotEnd, err := cursor.AddMinutes(duration)
		if err != nil {
			return nil, err
		}
		// Слот, выходящий за закрытие, отбрасывается - длительность,
		// не делящая окно нацело, просто оставляет остаток
		if slotEnd.IsAfter(tpl.CloseTime) {
			break
		}

		slots = append(slots, domain.Slot{
			StartTime:       cursor,
			EndTime:         slotEnd,
			DurationMinutes: duration,
			Available:       true,
		})

		cursor = slotEnd
	}

	return slots, nil
}

// markAvailability помечает занятые слоты по активным записям.
// Слот недоступен, если с ним пересекается хотя бы одна запись в статусе
// pending или approved, относящаяся к тому же ресурсу.
func markAvailability(slots []domain.Slot, appointments []*domain.Appointment, resourceID *int64) []domain.Slot {
	result := make([]domain.Slot, len(slots))

	for i, slot := range slots {
		slot.Available = !hasConflict(
			domain.Interval{Start: slot.StartTime, End: slot.EndTime},
			appointments,
			resourceID,
		)
		result[i] = slot
	}

	return result
}

// hasConflict проверяет, пересекается ли интервал с какой-либо активной записью
// на том же ресурсе. Граничащие интервалы не считаются пересечением.
func hasConflict(interval domain.Interval, appointments []*domain.Appointment, resourceID *int64) bool {
	for _, appt := range appointments {
		if !appt.HoldsSlot() {
			continue
		}
		if !resourceMatches(appt.ResourceID, resourceID) {
			continue
		}

		apptInterval := domain.Interval{Start: appt.StartTime, End: appt.EndTime}
		if interval.Overlaps(apptInterval) {
			return true
		}
	}

	return false
}

// resourceMatches определяет, блокирует ли запись на ресурс apptResource
// слот ресурса requested.
// Запись без ресурса занимает общий календарь и блокирует всех.
// Запрос без ресурса смотрит на общий календарь - его блокирует любая запись.
func resourceMatches(apptResource, requested *int64) bool {
	if apptResource == nil || requested == nil {
		return true
	}
	return *apptResource == *requested
}
