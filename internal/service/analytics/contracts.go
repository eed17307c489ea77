package analytics

import (
	"context"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	GetByClientEmail(ctx context.Context, businessID int64, clientEmail string) ([]*domain.Appointment, error)
	GetDistinctClientEmails(ctx context.Context, businessID int64) ([]string, error)
}

// SuggestionRepository интерфейс репозитория рекомендаций и инсайтов
type SuggestionRepository interface {
	Create(ctx context.Context, s *domain.SchedulingSuggestion) (*domain.SchedulingSuggestion, error)
	ListByBusiness(ctx context.Context, businessID int64, suggestionType *domain.SuggestionType) ([]*domain.SchedulingSuggestion, error)
	SetAccepted(ctx context.Context, id int64, accepted bool) error
	ReplaceInsight(ctx context.Context, insight *domain.ClientInsight) (*domain.ClientInsight, error)
	GetInsightsByClient(ctx context.Context, businessID int64, clientEmail string) ([]*domain.ClientInsight, error)
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
