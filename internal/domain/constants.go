package domain

import "github.com/avdk/BMS-SchedulingService/pkg/types"

// Default scheduling values
const (
	DefaultSlotDurationMinutes = 30

	// Floor рабочих часов, когда у бизнеса нет расписания на день недели
	DefaultOpenHour  = 9
	DefaultCloseHour = 19

	DefaultOpenTime  types.TimeString = "09:00"
	DefaultCloseTime types.TimeString = "19:00"
)

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 часов
	MaxStaffNotesLength    = 500
	MaxDeclineReasonLength = 500
	MaxClientNameLength    = 200
)

// Analytics thresholds. Kept as named constants so the test suite can pin
// the exact values the heuristics use.
const (
	// BusyHourThresholdFactor - час считается загруженным, если записей
	// в нём больше, чем BusyHourThresholdFactor * среднее по часам
	BusyHourThresholdFactor = 1.5

	// PricingThresholdFactor - порог пиковых часов для ценовых рекомендаций
	PricingThresholdFactor = 1.3

	// ConfidenceScale - множитель перевода consistency (0..1) в confidence (1..5)
	ConfidenceScale = 5

	// MinRebookingHistory - минимум визитов для прогноза интервала повторной записи
	MinRebookingHistory = 2

	// OptimalSlotBufferHours - свободный буфер (в часах) вокруг предлагаемого
	// optimal-slot часа
	OptimalSlotBufferHours = 1
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы записей, удерживающих слот.
// Используются при подсчёте конфликтов и доступных слотов.
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusApproved,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []AppointmentStatus{
	StatusDeclined,
	StatusCompleted,
	StatusCancelled,
}
