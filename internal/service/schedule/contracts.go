package schedule

import (
	"context"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория недельных шаблонов
type AvailabilityRepository interface {
	Upsert(ctx context.Context, tpl *domain.WeekdayTemplate) (*domain.WeekdayTemplate, error)
	GetByBusinessAndWeekday(ctx context.Context, businessID int64, weekday domain.Weekday) (*domain.WeekdayTemplate, error)
	GetWeek(ctx context.Context, businessID int64) ([]*domain.WeekdayTemplate, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetApprovedByWeekdayFromDate(ctx context.Context, businessID int64, weekday domain.Weekday, from time.Time) ([]*domain.Appointment, error)
}

// SuggestionRepository интерфейс репозитория рекомендаций
type SuggestionRepository interface {
	Create(ctx context.Context, s *domain.SchedulingSuggestion) (*domain.SchedulingSuggestion, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
