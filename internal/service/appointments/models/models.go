package models

import (
	"errors"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/ptr"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ApproveAppointmentRequest запрос на одобрение записи
type ApproveAppointmentRequest struct {
	StaffNotes *string `json:"staffNotes,omitempty"`
}

// DeclineAppointmentRequest запрос на отклонение записи
type DeclineAppointmentRequest struct {
	Reason string `json:"reason"`
}

// GetBusinessAppointmentsRequest запрос на получение записей бизнеса
type GetBusinessAppointmentsRequest struct {
	BusinessID      int64      `json:"businessId"`
	ResourceID      *int64     `json:"resourceId,omitempty"`      // Фильтр по мастеру (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	ClientEmail     *string    `json:"clientEmail,omitempty"`     // Фильтр по клиенту (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить терминальные записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBusinessAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		BusinessID:      r.BusinessID,
		ResourceID:      r.ResourceID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		ClientEmail:     r.ClientEmail,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"businessId"`
	ServiceID  int64  `json:"serviceId"`
	ResourceID *int64 `json:"resourceId,omitempty"`
	Date       string `json:"date"`      // "2025-10-15"
	StartTime  string `json:"startTime"` // "10:00"
	EndTime    string `json:"endTime"`   // "10:30"
	Status     string `json:"status"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`

	IsDirectBooking bool    `json:"isDirectBooking"`
	StaffNotes      *string `json:"staffNotes,omitempty"`

	ApprovedAt    *string `json:"approvedAt,omitempty"` // ISO 8601 format
	DeclinedAt    *string `json:"declinedAt,omitempty"` // ISO 8601 format
	DeclineReason *string `json:"declineReason,omitempty"`

	// Денормализованные данные услуги
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:              a.ID,
		BusinessID:      a.BusinessID,
		ServiceID:       a.ServiceID,
		ResourceID:      a.ResourceID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		EndTime:         a.EndTime.String(),
		Status:          string(a.Status),
		ClientName:      a.ClientName,
		ClientEmail:     a.ClientEmail,
		ClientPhone:     a.ClientPhone,
		IsDirectBooking: a.IsDirectBooking,
		StaffNotes:      a.StaffNotes,
		DeclineReason:   a.DeclineReason,
		ServiceName:     a.ServiceName,
		ServicePrice:    a.ServicePrice,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	// Конвертируем временные метки в строки ISO 8601
	if a.ApprovedAt != nil {
		resp.ApprovedAt = ptr.Ptr(a.ApprovedAt.Format(time.RFC3339))
	}
	if a.DeclinedAt != nil {
		resp.DeclinedAt = ptr.Ptr(a.DeclinedAt.Format(time.RFC3339))
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	if appointments == nil {
		return &AppointmentListResponse{
			Appointments: []AppointmentResponse{},
		}
	}

	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, len(appointments)),
	}

	for i, appt := range appointments {
		if apptResp := FromDomainAppointment(appt); apptResp != nil {
			resp.Appointments[i] = *apptResp
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	// Валидируем статус
	validStatuses := []domain.AppointmentStatus{
		domain.StatusPending,
		domain.StatusApproved,
		domain.StatusDeclined,
		domain.StatusCompleted,
		domain.StatusCancelled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
