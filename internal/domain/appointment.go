package domain

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusDeclined  AppointmentStatus = "declined"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a booked service appointment.
// Appointments are never physically deleted: terminal records are
// retained as history for the scheduling analytics.
type Appointment struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	ResourceID *int64 // мастер/специалист; nil = общий календарь бизнеса
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     AppointmentStatus

	ClientName  string
	ClientEmail string
	ClientPhone *string

	// IsDirectBooking - запись создана клиентом через публичный виджет,
	// а не сотрудником. Такие записи стартуют в статусе pending.
	IsDirectBooking bool

	StaffNotes    *string
	ApprovedAt    *time.Time
	DeclinedAt    *time.Time
	DeclineReason *string

	// Denormalized service data for history
	ServiceName  string
	ServicePrice float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HoldsSlot returns true if the appointment occupies its time interval.
// Only pending and approved appointments block a slot.
func (a *Appointment) HoldsSlot() bool {
	return a.Status == StatusPending || a.Status == StatusApproved
}

// IsTerminal returns true if no further lifecycle transition is allowed
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusDeclined || a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CanBeApproved returns true if the appointment may transition to approved
func (a *Appointment) CanBeApproved() bool {
	return a.Status == StatusPending
}

// CanBeDeclined returns true if the appointment may transition to declined
func (a *Appointment) CanBeDeclined() bool {
	return a.Status == StatusPending
}

// CanBeCompleted returns true if the appointment may transition to completed
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusApproved
}

// CanBeCancelled returns true if the appointment may transition to cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusApproved
}

// InitialStatus возвращает начальный статус записи.
// Записи сотрудников доверенные и сразу подтверждаются,
// прямые записи клиентов требуют одобрения.
func InitialStatus(isDirectBooking bool) AppointmentStatus {
	if isDirectBooking {
		return StatusPending
	}
	return StatusApproved
}

// AppointmentsFilter фильтр для выборки записей бизнеса
type AppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	ResourceID      *int64             // Фильтр по мастеру (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	ClientEmail     *string            // Фильтр по клиенту (опционально)
	IncludeInactive bool               // Включать ли терминальные записи
}
