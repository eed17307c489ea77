package decline_appointment

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/appointments/models"
)

type AppointmentService interface {
	Decline(ctx context.Context, id int64, req *models.DeclineAppointmentRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
