package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	suggestionRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/suggestion"
	"github.com/avdk/BMS-SchedulingService/internal/service/analytics/models"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type fakeAppointmentRepo struct {
	history []*domain.Appointment
}

func (r *fakeAppointmentRepo) GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	return r.history, nil
}

func (r *fakeAppointmentRepo) GetByClientEmail(ctx context.Context, businessID int64, clientEmail string) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	for _, appt := range r.history {
		if appt.ClientEmail == clientEmail {
			result = append(result, appt)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) GetDistinctClientEmails(ctx context.Context, businessID int64) ([]string, error) {
	seen := make(map[string]bool)
	emails := make([]string, 0)
	for _, appt := range r.history {
		if appt.ClientEmail != "" && !seen[appt.ClientEmail] {
			seen[appt.ClientEmail] = true
			emails = append(emails, appt.ClientEmail)
		}
	}
	return emails, nil
}

type fakeSuggestionRepo struct {
	nextID      int64
	suggestions []*domain.SchedulingSuggestion
	insights    []*domain.ClientInsight
	setAccepted map[int64]bool
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{setAccepted: make(map[int64]bool)}
}

func (r *fakeSuggestionRepo) Create(ctx context.Context, s *domain.SchedulingSuggestion) (*domain.SchedulingSuggestion, error) {
	r.nextID++
	saved := *s
	saved.ID = r.nextID
	saved.CreatedAt = time.Now()
	r.suggestions = append(r.suggestions, &saved)
	return &saved, nil
}

func (r *fakeSuggestionRepo) ListByBusiness(ctx context.Context, businessID int64, suggestionType *domain.SuggestionType) ([]*domain.SchedulingSuggestion, error) {
	result := make([]*domain.SchedulingSuggestion, 0)
	for _, s := range r.suggestions {
		if s.BusinessID != businessID {
			continue
		}
		if suggestionType != nil && s.Type != *suggestionType {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (r *fakeSuggestionRepo) SetAccepted(ctx context.Context, id int64, accepted bool) error {
	for _, s := range r.suggestions {
		if s.ID == id {
			s.IsAccepted = &accepted
			r.setAccepted[id] = accepted
			return nil
		}
	}
	return suggestionRepo.ErrSuggestionNotFound
}

func (r *fakeSuggestionRepo) ReplaceInsight(ctx context.Context, insight *domain.ClientInsight) (*domain.ClientInsight, error) {
	// Вытеснение по (business, client, type)
	for i, existing := range r.insights {
		if existing.BusinessID == insight.BusinessID &&
			existing.ClientEmail == insight.ClientEmail &&
			existing.Type == insight.Type {
			r.insights[i] = insight
			return insight, nil
		}
	}
	r.insights = append(r.insights, insight)
	return insight, nil
}

func (r *fakeSuggestionRepo) GetInsightsByClient(ctx context.Context, businessID int64, clientEmail string) ([]*domain.ClientInsight, error) {
	result := make([]*domain.ClientInsight, 0)
	for _, i := range r.insights {
		if i.BusinessID == businessID && i.ClientEmail == clientEmail {
			result = append(result, i)
		}
	}
	return result, nil
}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(appointments *fakeAppointmentRepo, suggestions *fakeSuggestionRepo) *Service {
	return NewService(appointments, suggestions, &fixedTimeProvider{now: testNow}, nopLogger{})
}

func historyAppt(status domain.AppointmentStatus, email string, date time.Time, start types.TimeString) *domain.Appointment {
	return &domain.Appointment{
		BusinessID:  1,
		Date:        date,
		StartTime:   start,
		Status:      status,
		ClientEmail: email,
	}
}

func TestService_RefreshSuggestions(t *testing.T) {
	t.Run("busy hours produce suggestions", func(t *testing.T) {
		history := make([]*domain.Appointment, 0)
		// Перекос в 10:00: шесть записей против одной в 14:00 и одной в 16:00
		for i := 0; i < 6; i++ {
			history = append(history, historyAppt(domain.StatusApproved, "", testNow, "10:00"))
		}
		history = append(history,
			historyAppt(domain.StatusApproved, "", testNow, "14:00"),
			historyAppt(domain.StatusApproved, "", testNow, "16:00"),
		)

		suggestions := newFakeSuggestionRepo()
		svc := newTestService(&fakeAppointmentRepo{history: history}, suggestions)

		resp, err := svc.RefreshSuggestions(context.Background(), 1)
		require.NoError(t, err)

		byType := make(map[string]bool)
		for _, s := range resp.Suggestions {
			byType[s.Type] = true
		}

		assert.True(t, byType[string(domain.SuggestionBusyHours)])
		assert.True(t, byType[string(domain.SuggestionPricing)])
		assert.Equal(t, len(resp.Suggestions), resp.Created)
	})

	t.Run("declined history produces nothing", func(t *testing.T) {
		history := []*domain.Appointment{
			historyAppt(domain.StatusDeclined, "", testNow, "10:00"),
			historyAppt(domain.StatusCancelled, "", testNow, "11:00"),
		}

		suggestions := newFakeSuggestionRepo()
		svc := newTestService(&fakeAppointmentRepo{history: history}, suggestions)

		resp, err := svc.RefreshSuggestions(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, resp.Created)
		assert.Zero(t, resp.InsightsComputed)
	})

	t.Run("regular client yields insight and rebooking suggestion", func(t *testing.T) {
		// Клиент ходит раз в месяц, последний визит месяц назад:
		// ожидаемый визит попадает в окно рекомендации
		history := []*domain.Appointment{
			historyAppt(domain.StatusCompleted, "ivan@example.com", testNow.AddDate(0, 0, -92), "10:00"),
			historyAppt(domain.StatusCompleted, "ivan@example.com", testNow.AddDate(0, 0, -61), "10:00"),
			historyAppt(domain.StatusCompleted, "ivan@example.com", testNow.AddDate(0, 0, -31), "10:00"),
		}

		suggestions := newFakeSuggestionRepo()
		svc := newTestService(&fakeAppointmentRepo{history: history}, suggestions)

		resp, err := svc.RefreshSuggestions(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, 1, resp.InsightsComputed)
		require.Len(t, suggestions.insights, 1)

		insight := suggestions.insights[0]
		assert.Equal(t, "ivan@example.com", insight.ClientEmail)
		assert.Equal(t, domain.InsightRebookingInterval, insight.Type)

		var data domain.RebookingInsightData
		require.NoError(t, json.Unmarshal(insight.Data, &data))
		assert.Equal(t, 3, data.VisitCount)
		assert.InDelta(t, 30.5, float64(data.AverageDays), 1)

		found := false
		for _, s := range resp.Suggestions {
			if s.Type == string(domain.SuggestionRebooking) {
				found = true
				assert.Contains(t, s.Suggestion, "ivan@example.com")
			}
		}
		assert.True(t, found)
	})

	t.Run("distant next visit gives insight without suggestion", func(t *testing.T) {
		// Последний визит вчера, следующий ожидается через месяц
		history := []*domain.Appointment{
			historyAppt(domain.StatusCompleted, "anna@example.com", testNow.AddDate(0, 0, -61), "10:00"),
			historyAppt(domain.StatusCompleted, "anna@example.com", testNow.AddDate(0, 0, -31), "10:00"),
			historyAppt(domain.StatusCompleted, "anna@example.com", testNow.AddDate(0, 0, -1), "10:00"),
		}

		suggestions := newFakeSuggestionRepo()
		svc := newTestService(&fakeAppointmentRepo{history: history}, suggestions)

		resp, err := svc.RefreshSuggestions(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, 1, resp.InsightsComputed)
		for _, s := range resp.Suggestions {
			assert.NotEqual(t, string(domain.SuggestionRebooking), s.Type)
		}
	})

	t.Run("single visit is not enough for insight", func(t *testing.T) {
		history := []*domain.Appointment{
			historyAppt(domain.StatusCompleted, "new@example.com", testNow.AddDate(0, 0, -10), "10:00"),
		}

		svc := newTestService(&fakeAppointmentRepo{history: history}, newFakeSuggestionRepo())

		resp, err := svc.RefreshSuggestions(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, resp.InsightsComputed)
	})
}

func TestService_ListSuggestions(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	_, err := suggestions.Create(context.Background(), &domain.SchedulingSuggestion{
		BusinessID: 1,
		Type:       domain.SuggestionBusyHours,
	})
	require.NoError(t, err)
	_, err = suggestions.Create(context.Background(), &domain.SchedulingSuggestion{
		BusinessID: 1,
		Type:       domain.SuggestionPricing,
	})
	require.NoError(t, err)

	svc := newTestService(&fakeAppointmentRepo{}, suggestions)

	t.Run("all suggestions", func(t *testing.T) {
		resp, err := svc.ListSuggestions(context.Background(), &models.ListSuggestionsRequest{BusinessID: 1})
		require.NoError(t, err)
		assert.Len(t, resp.Suggestions, 2)
	})

	t.Run("filtered by type", func(t *testing.T) {
		typ := string(domain.SuggestionPricing)
		resp, err := svc.ListSuggestions(context.Background(), &models.ListSuggestionsRequest{BusinessID: 1, Type: &typ})
		require.NoError(t, err)
		require.Len(t, resp.Suggestions, 1)
		assert.Equal(t, typ, resp.Suggestions[0].Type)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		typ := "weather"
		_, err := svc.ListSuggestions(context.Background(), &models.ListSuggestionsRequest{BusinessID: 1, Type: &typ})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_AcceptSuggestion(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	created, err := suggestions.Create(context.Background(), &domain.SchedulingSuggestion{
		BusinessID: 1,
		Type:       domain.SuggestionBusyHours,
	})
	require.NoError(t, err)

	svc := newTestService(&fakeAppointmentRepo{}, suggestions)

	require.NoError(t, svc.AcceptSuggestion(context.Background(), created.ID, &models.AcceptSuggestionRequest{Accepted: true}))
	assert.True(t, suggestions.setAccepted[created.ID])

	err = svc.AcceptSuggestion(context.Background(), 999, &models.AcceptSuggestionRequest{Accepted: true})
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestService_GetClientInsights(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	_, err := suggestions.ReplaceInsight(context.Background(), &domain.ClientInsight{
		BusinessID:  1,
		ClientEmail: "ivan@example.com",
		Type:        domain.InsightRebookingInterval,
		Data:        json.RawMessage(`{"averageDays":30}`),
		Confidence:  4,
	})
	require.NoError(t, err)

	svc := newTestService(&fakeAppointmentRepo{}, suggestions)

	t.Run("insights returned", func(t *testing.T) {
		resp, err := svc.GetClientInsights(context.Background(), 1, "ivan@example.com")
		require.NoError(t, err)
		require.Len(t, resp.Insights, 1)
		assert.Equal(t, 4, resp.Insights[0].Confidence)
	})

	t.Run("unknown client has no insights", func(t *testing.T) {
		resp, err := svc.GetClientInsights(context.Background(), 1, "ghost@example.com")
		require.NoError(t, err)
		assert.Empty(t, resp.Insights)
	})

	t.Run("email required", func(t *testing.T) {
		_, err := svc.GetClientInsights(context.Background(), 1, "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
