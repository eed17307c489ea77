package models

import (
	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// Request модели

// SetDayScheduleRequest запрос на полную перезапись шаблона дня недели
type SetDayScheduleRequest struct {
	BusinessID          int64  `json:"businessId"`
	Weekday             int    `json:"weekday"` // 0 = воскресенье .. 6 = суббота
	IsOpen              bool   `json:"isOpen"`
	OpenTime            string `json:"openTime,omitempty"`  // "09:00"
	CloseTime           string `json:"closeTime,omitempty"` // "19:00"
	SlotDurationMinutes int    `json:"slotDurationMinutes,omitempty"`
}

// ToDomainTemplate конвертирует request в domain модель.
// Для закрытого дня рабочее окно обнуляется.
func (r *SetDayScheduleRequest) ToDomainTemplate() *domain.WeekdayTemplate {
	tpl := &domain.WeekdayTemplate{
		BusinessID:          r.BusinessID,
		Weekday:             domain.Weekday(r.Weekday),
		IsOpen:              r.IsOpen,
		SlotDurationMinutes: r.SlotDurationMinutes,
	}

	if tpl.SlotDurationMinutes == 0 {
		tpl.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}

	if r.IsOpen {
		tpl.OpenTime = types.TimeString(r.OpenTime)
		tpl.CloseTime = types.TimeString(r.CloseTime)
	}

	return tpl
}

// Response модели

// DayScheduleResponse ответ с шаблоном одного дня недели
type DayScheduleResponse struct {
	BusinessID          int64  `json:"businessId"`
	Weekday             int    `json:"weekday"`
	WeekdayName         string `json:"weekdayName"`
	IsOpen              bool   `json:"isOpen"`
	OpenTime            string `json:"openTime,omitempty"`
	CloseTime           string `json:"closeTime,omitempty"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
}

// WeekScheduleResponse ответ с полным недельным расписанием.
// Всегда содержит 7 дней: дни без явного шаблона отдаются как закрытые.
type WeekScheduleResponse struct {
	BusinessID int64                 `json:"businessId"`
	Days       []DayScheduleResponse `json:"days"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(tpl *domain.WeekdayTemplate) *DayScheduleResponse {
	if tpl == nil {
		return nil
	}

	resp := &DayScheduleResponse{
		BusinessID:          tpl.BusinessID,
		Weekday:             int(tpl.Weekday),
		WeekdayName:         tpl.Weekday.String(),
		IsOpen:              tpl.IsOpen,
		SlotDurationMinutes: tpl.SlotDurationMinutes,
	}

	if tpl.IsOpen {
		resp.OpenTime = tpl.OpenTime.String()
		resp.CloseTime = tpl.CloseTime.String()
	}

	return resp
}
