package update_day_schedule

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/schedule/models"
)

type ScheduleService interface {
	SetDaySchedule(ctx context.Context, req *models.SetDayScheduleRequest) (*models.DayScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
