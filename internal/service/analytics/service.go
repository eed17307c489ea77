package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	suggestionRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/suggestion"
	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
)

// rebookingDueWindowDays - горизонт, в котором ожидаемый повторный визит
// клиента превращается в рекомендацию "свяжитесь с клиентом"
const rebookingDueWindowDays = 7

// Service сервис аналитики расписания. Пересчитывает рекомендации
// и инсайты по накопленной истории записей. Пересчёт запускается
// сотрудником вручную, фонового планировщика нет.
type Service struct {
	appointmentRepo AppointmentRepository
	suggestionRepo  SuggestionRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса аналитики
func NewService(
	appointmentRepo AppointmentRepository,
	suggestionRepo SuggestionRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		suggestionRepo:  suggestionRepo,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// ListSuggestions получает рекомендации бизнеса, опционально по типу
func (s *Service) ListSuggestions(ctx context.Context, req *models.ListSuggestionsRequest) (*models.SuggestionListResponse, error) {
	s.logger.Info("ListSuggestions: fetching suggestions for business=%d, type=%v", req.BusinessID, req.Type)

	suggestionType, err := req.ToDomainType()
	if err != nil {
		s.logger.Warn("ListSuggestions: invalid type=%v for business=%d", req.Type, req.BusinessID)
		return nil, fmt.Errorf("%w: invalid suggestion type", ErrInvalidInput)
	}

	suggestions, err := s.suggestionRepo.ListByBusiness(ctx, req.BusinessID, suggestionType)
	if err != nil {
		s.logger.Error("ListSuggestions: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: ListSuggestions - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListSuggestions: successfully fetched %d suggestions for business=%d", len(suggestions), req.BusinessID)
	return models.FromDomainSuggestionList(suggestions), nil
}

// AcceptSuggestion помечает рекомендацию как принятую или отклонённую сотрудником
func (s *Service) AcceptSuggestion(ctx context.Context, id int64, req *models.AcceptSuggestionRequest) error {
	s.logger.Info("AcceptSuggestion: marking suggestion id=%d as accepted=%v", id, req.Accepted)

	if err := s.suggestionRepo.SetAccepted(ctx, id, req.Accepted); err != nil {
		if errors.Is(err, suggestionRepo.ErrSuggestionNotFound) {
			s.logger.Warn("AcceptSuggestion: suggestion id=%d not found", id)
			return ErrSuggestionNotFound
		}
		s.logger.Error("AcceptSuggestion: repository error for suggestion id=%d: %v", id, err)
		return fmt.Errorf("%w: AcceptSuggestion - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AcceptSuggestion: successfully marked suggestion id=%d", id)
	return nil
}

// GetClientInsights получает сохранённые инсайты по клиенту бизнеса
func (s *Service) GetClientInsights(ctx context.Context, businessID int64, clientEmail string) (*models.ClientInsightListResponse, error) {
	s.logger.Info("GetClientInsights: fetching insights for business=%d, client=%s", businessID, clientEmail)

	clientEmail = strings.TrimSpace(clientEmail)
	if clientEmail == "" {
		s.logger.Warn("GetClientInsights: empty client email for business=%d", businessID)
		return nil, fmt.Errorf("%w: client email is required", ErrInvalidInput)
	}

	insights, err := s.suggestionRepo.GetInsightsByClient(ctx, businessID, clientEmail)
	if err != nil {
		s.logger.Error("GetClientInsights: repository error for business=%d, client=%s: %v", businessID, clientEmail, err)
		return nil, fmt.Errorf("%w: GetClientInsights - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientInsights: successfully fetched %d insights for business=%d, client=%s",
		len(insights), businessID, clientEmail)
	return models.FromDomainInsightList(insights), nil
}

// RefreshSuggestions пересчитывает рекомендации и инсайты бизнеса
// по всей накопленной истории записей. Старые рекомендации не удаляются,
// новое вычисление добавляется поверх; инсайты по клиентам вытесняются.
func (s *Service) RefreshSuggestions(ctx context.Context, businessID int64) (*models.RefreshSuggestionsResponse, error) {
	s.logger.Info("RefreshSuggestions: recomputing analytics for business=%d", businessID)

	// 1. Загружаем полную историю, включая терминальные записи
	history, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, domain.AppointmentsFilter{
		BusinessID:      businessID,
		IncludeInactive: true,
	})
	if err != nil {
		s.logger.Error("RefreshSuggestions: failed to fetch history for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: RefreshSuggestions - repository error: %v", ErrInternal, err)
	}

	demand := demandAppointments(history)
	counts := hourCounts(demand)

	var created []*domain.SchedulingSuggestion

	// 2. Эвристики по загруженности часов
	if sg := s.busyHoursSuggestion(businessID, counts); sg != nil {
		created = append(created, sg)
	}
	if sg := s.optimalSlotSuggestion(businessID, counts); sg != nil {
		created = append(created, sg)
	}
	if sg := s.pricingSuggestion(businessID, counts); sg != nil {
		created = append(created, sg)
	}

	// 3. Инсайты по клиентам и рекомендации о повторной записи
	insightsComputed, rebookingSuggestions := s.computeClientInsights(ctx, businessID)
	created = append(created, rebookingSuggestions...)

	// 4. Сохраняем рекомендации
	saved := make([]*domain.SchedulingSuggestion, 0, len(created))
	for _, sg := range created {
		persisted, err := s.suggestionRepo.Create(ctx, sg)
		if err != nil {
			s.logger.Error("RefreshSuggestions: failed to persist %s suggestion for business=%d: %v",
				sg.Type, businessID, err)
			continue
		}
		saved = append(saved, persisted)
	}

	s.logger.Info("RefreshSuggestions: created %d suggestions and %d insights for business=%d",
		len(saved), insightsComputed, businessID)

	resp := &models.RefreshSuggestionsResponse{
		Created:          len(saved),
		InsightsComputed: insightsComputed,
		Suggestions:      models.FromDomainSuggestionList(saved).Suggestions,
	}
	return resp, nil
}

// Вспомогательные методы

// busyHoursSuggestion строит рекомендацию по перегруженным часам
func (s *Service) busyHoursSuggestion(businessID int64, counts map[int]int) *domain.SchedulingSuggestion {
	busy := busyHours(counts, domain.BusyHourThresholdFactor)
	if len(busy) == 0 {
		return nil
	}

	hours := make([]string, 0, len(busy))
	details := make([]string, 0, len(busy))
	for _, h := range busy {
		hours = append(hours, fmt.Sprintf("%02d:00", h.Hour))
		details = append(details, fmt.Sprintf("%02d:00 - %d записей", h.Hour, h.Count))
	}

	return &domain.SchedulingSuggestion{
		BusinessID: businessID,
		Type:       domain.SuggestionBusyHours,
		Suggestion: fmt.Sprintf("Добавьте мастера или увеличьте длительность слотов в часы пик: %s", strings.Join(hours, ", ")),
		Reasoning: fmt.Sprintf("Нагрузка выше %.1fx от средней (%.1f записей/час): %s",
			domain.BusyHourThresholdFactor, meanCount(counts), strings.Join(details, "; ")),
		Priority: 4,
	}
}

// optimalSlotSuggestion строит рекомендацию по пустующим часам
func (s *Service) optimalSlotSuggestion(businessID int64, counts map[int]int) *domain.SchedulingSuggestion {
	free := optimalSlots(counts)
	if len(free) == 0 {
		return nil
	}

	hours := make([]string, 0, len(free))
	for _, h := range free {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}

	return &domain.SchedulingSuggestion{
		BusinessID: businessID,
		Type:       domain.SuggestionOptimalSlot,
		Suggestion: fmt.Sprintf("Продвигайте свободные часы со скидкой: %s", strings.Join(hours, ", ")),
		Reasoning: fmt.Sprintf("В этих часах (и в соседних +/- %d ч) нет ни одной записи за всю историю",
			domain.OptimalSlotBufferHours),
		Priority: 2,
	}
}

// pricingSuggestion строит ценовую рекомендацию для пиковых часов
func (s *Service) pricingSuggestion(businessID int64, counts map[int]int) *domain.SchedulingSuggestion {
	peak := pricingHours(counts, domain.PricingThresholdFactor)
	if len(peak) == 0 {
		return nil
	}

	hours := make([]string, 0, len(peak))
	for _, h := range peak {
		hours = append(hours, fmt.Sprintf("%02d:00", h.Hour))
	}

	return &domain.SchedulingSuggestion{
		BusinessID: businessID,
		Type:       domain.SuggestionPricing,
		Suggestion: fmt.Sprintf("Рассмотрите повышенные цены в часы высокого спроса: %s", strings.Join(hours, ", ")),
		Reasoning: fmt.Sprintf("Спрос в этих часах превышает %.1fx от среднего (%.1f записей/час)",
			domain.PricingThresholdFactor, meanCount(counts)),
		Priority: 3,
	}
}

// computeClientInsights пересчитывает инсайты повторной записи по всем
// клиентам бизнеса. Возвращает число сохранённых инсайтов и рекомендации
// по клиентам, чей ожидаемый визит уже близко.
func (s *Service) computeClientInsights(ctx context.Context, businessID int64) (int, []*domain.SchedulingSuggestion) {
	emails, err := s.appointmentRepo.GetDistinctClientEmails(ctx, businessID)
	if err != nil {
		s.logger.Error("computeClientInsights: failed to fetch client emails for business=%d: %v", businessID, err)
		return 0, nil
	}

	now := s.timeProvider.Now()
	dueBefore := now.AddDate(0, 0, rebookingDueWindowDays)

	computed := 0
	var suggestions []*domain.SchedulingSuggestion

	for _, email := range emails {
		appointments, err := s.appointmentRepo.GetByClientEmail(ctx, businessID, email)
		if err != nil {
			s.logger.Error("computeClientInsights: failed to fetch history for client=%s: %v", email, err)
			continue
		}

		// Прогноз строится только по завершённым визитам
		visits := make([]time.Time, 0, len(appointments))
		for _, appt := range appointments {
			if appt.Status == domain.StatusCompleted {
				visits = append(visits, appt.Date)
			}
		}

		data, confidence, ok := rebookingPrediction(visits)
		if !ok {
			continue
		}

		payload, err := json.Marshal(data)
		if err != nil {
			s.logger.Error("computeClientInsights: failed to marshal insight for client=%s: %v", email, err)
			continue
		}

		insight := &domain.ClientInsight{
			BusinessID:  businessID,
			ClientEmail: email,
			Type:        domain.InsightRebookingInterval,
			Data:        payload,
			Confidence:  confidence,
		}

		if _, err := s.suggestionRepo.ReplaceInsight(ctx, insight); err != nil {
			s.logger.Error("computeClientInsights: failed to persist insight for client=%s: %v", email, err)
			continue
		}
		computed++

		// Ожидаемый визит уже рядом - подсказываем сотрудникам написать клиенту
		if data.NextExpected.Before(dueBefore) {
			suggestions = append(suggestions, &domain.SchedulingSuggestion{
				BusinessID: businessID,
				Type:       domain.SuggestionRebooking,
				Suggestion: fmt.Sprintf("Предложите клиенту %s записаться снова", email),
				Reasoning: fmt.Sprintf("Клиент приходит в среднем каждые %d дней (%d визитов), ожидаемый визит %s",
					data.AverageDays, data.VisitCount, data.NextExpected.Format(domain.DateFormat)),
				Priority: 3,
			})
		}
	}

	return computed, suggestions
}
