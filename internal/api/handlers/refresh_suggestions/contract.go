package refresh_suggestions

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

type AnalyticsService interface {
	RefreshSuggestions(ctx context.Context, businessID int64) (*models.RefreshSuggestionsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
