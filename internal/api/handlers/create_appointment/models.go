package create_appointment

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	createAppointment "github.com/avdk/BMS-SchedulingService/internal/usecase/create_appointment"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BusinessID int64   `json:"businessId"`
	ServiceID  int64   `json:"serviceId"`
	ResourceID *int64  `json:"resourceId,omitempty"`
	Date       string  `json:"date"`              // "2025-10-15"
	StartTime  string  `json:"startTime"`         // "10:00"
	EndTime    *string `json:"endTime,omitempty"` // если не указано - из длительности услуги

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`

	StaffNotes *string `json:"staffNotes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"businessId"`
	ServiceID  int64  `json:"serviceId"`
	ResourceID *int64 `json:"resourceId,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Status     string `json:"status"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`

	IsDirectBooking bool    `json:"isDirectBooking"`
	StaffNotes      *string `json:"staffNotes,omitempty"`

	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// isDirectBooking=true для анонимных запросов из публичного виджета.
func (r *CreateAppointmentRequest) ToUseCaseRequest(isDirectBooking bool) (*createAppointment.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	// Парсим время начала
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	// Время конца опционально
	var endTime types.TimeString
	if r.EndTime != nil {
		endTime, err = types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
	}

	return &createAppointment.Request{
		BusinessID:      r.BusinessID,
		ServiceID:       r.ServiceID,
		ResourceID:      r.ResourceID,
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		ClientName:      r.ClientName,
		ClientEmail:     r.ClientEmail,
		ClientPhone:     r.ClientPhone,
		IsDirectBooking: isDirectBooking,
		StaffNotes:      r.StaffNotes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		BusinessID:      resp.BusinessID,
		ServiceID:       resp.ServiceID,
		ResourceID:      resp.ResourceID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		Status:          resp.Status,
		ClientName:      resp.ClientName,
		ClientEmail:     resp.ClientEmail,
		ClientPhone:     resp.ClientPhone,
		IsDirectBooking: resp.IsDirectBooking,
		StaffNotes:      resp.StaffNotes,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
