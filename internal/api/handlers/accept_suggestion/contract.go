package accept_suggestion

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

type AnalyticsService interface {
	AcceptSuggestion(ctx context.Context, id int64, req *models.AcceptSuggestionRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
