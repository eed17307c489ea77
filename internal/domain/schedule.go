package domain

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// WeekdayTemplate represents the recurring weekly availability of a business
// for one weekday. A business has at most one template per weekday; days
// without an explicit record are treated as closed.
type WeekdayTemplate struct {
	ID                  int64
	BusinessID          int64
	Weekday             Weekday
	IsOpen              bool
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	SlotDurationMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ClosedTemplate возвращает дефолтный шаблон "закрыто" для дня недели,
// на который у бизнеса нет явной записи.
func ClosedTemplate(businessID int64, weekday Weekday) *WeekdayTemplate {
	return &WeekdayTemplate{
		BusinessID:          businessID,
		Weekday:             weekday,
		IsOpen:              false,
		SlotDurationMinutes: DefaultSlotDurationMinutes,
	}
}

// DefaultTemplate возвращает шаблон с дефолтными рабочими часами 9-19.
// Используется как floor рабочих часов при проверке бронирования,
// когда у бизнеса вообще нет расписания.
func DefaultTemplate(businessID int64, weekday Weekday) *WeekdayTemplate {
	return &WeekdayTemplate{
		BusinessID:          businessID,
		Weekday:             weekday,
		IsOpen:              true,
		OpenTime:            DefaultOpenTime,
		CloseTime:           DefaultCloseTime,
		SlotDurationMinutes: DefaultSlotDurationMinutes,
	}
}
