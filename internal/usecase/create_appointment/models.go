package create_appointment

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	BusinessID int64            // ID бизнеса
	ServiceID  int64            // ID услуги из каталога
	ResourceID *int64           // Мастер; nil = общий календарь
	Date       time.Time        // Дата записи (без времени)
	StartTime  types.TimeString // Время начала (например, "10:00")
	EndTime    types.TimeString // Время конца; пустое = вычисляется из длительности услуги

	ClientName  string
	ClientEmail string
	ClientPhone *string

	// IsDirectBooking - запись пришла из публичного виджета самозаписи.
	// Такие записи создаются в статусе pending и ждут одобрения сотрудника.
	IsDirectBooking bool

	StaffNotes *string // Заметки сотрудника (только для staff-записей)
}

// Response модель ответа с созданной записью
type Response struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	ResourceID *int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     string

	ClientName  string
	ClientEmail string
	ClientPhone *string

	IsDirectBooking bool
	StaffNotes      *string

	// Денормализованные данные услуги
	ServiceName  string
	ServicePrice float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
