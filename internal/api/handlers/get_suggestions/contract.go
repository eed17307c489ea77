package get_suggestions

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

type AnalyticsService interface {
	ListSuggestions(ctx context.Context, req *models.ListSuggestionsRequest) (*models.SuggestionListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
