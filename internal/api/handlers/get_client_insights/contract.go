package get_client_insights

import (
	"context"

	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

type AnalyticsService interface {
	GetClientInsights(ctx context.Context, businessID int64, clientEmail string) (*models.ClientInsightListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
