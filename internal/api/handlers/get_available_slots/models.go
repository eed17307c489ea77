package get_available_slots

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	getAvailableSlots "github.com/avdk/BMS-SchedulingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	BusinessID int64           `json:"businessId"`
	Date       string          `json:"date"`
	ResourceID *int64          `json:"resourceId,omitempty"`
	IsOpen     bool            `json:"isOpen"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(businessID int64, dateStr string, resourceID *int64) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		BusinessID: businessID,
		Date:       date,
		ResourceID: resourceID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		BusinessID: resp.BusinessID,
		Date:       resp.Date.Format(domain.DateFormat),
		ResourceID: resp.ResourceID,
		IsOpen:     resp.IsOpen,
		Slots:      slots,
	}
}
