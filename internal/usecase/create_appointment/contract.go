package create_appointment

import (
	"context"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/internal/integrations/notifier"
	"github.com/avdk/BMS-SchedulingService/internal/integrations/servicecatalog"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// AvailabilityRepository интерфейс репозитория недельных шаблонов
type AvailabilityRepository interface {
	GetByBusinessAndWeekday(ctx context.Context, businessID int64, weekday domain.Weekday) (*domain.WeekdayTemplate, error)
}

// ServiceCatalogClient интерфейс клиента каталога услуг
type ServiceCatalogClient interface {
	GetService(ctx context.Context, businessID, serviceID int64) (*servicecatalog.Service, error)
}

// NotifierClient интерфейс клиента уведомлений
type NotifierClient interface {
	Send(ctx context.Context, n notifier.Notification) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
