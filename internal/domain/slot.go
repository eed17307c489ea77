package domain

import "github.com/avdk/BMS-SchedulingService/pkg/types"

// Slot represents one bookable time interval computed from a weekday template.
// Slots are never persisted: they are regenerated from the template on every
// availability query, which is safe because generation is deterministic.
type Slot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Available       bool
}

// Interval половинно-открытый интервал [Start, End) в рамках одной даты
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// Overlaps проверяет реальное пересечение двух интервалов.
// Граничащие интервалы (конец одного равен началу другого) не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && other.Start.IsBefore(i.End)
}
