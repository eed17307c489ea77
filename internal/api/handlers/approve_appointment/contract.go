package approve_appointment

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/appointments/models"
)

type AppointmentService interface {
	Approve(ctx context.Context, id int64, req *models.ApproveAppointmentRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
