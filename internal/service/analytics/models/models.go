package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

var (
	// ErrInvalidSuggestionType возвращается при неизвестном типе рекомендации
	ErrInvalidSuggestionType = errors.New("invalid suggestion type")
)

// Request модели

// ListSuggestionsRequest запрос на получение рекомендаций бизнеса
type ListSuggestionsRequest struct {
	BusinessID int64   `json:"businessId"`
	Type       *string `json:"type,omitempty"` // Фильтр по типу (опционально)
}

// ToDomainType конвертирует фильтр типа в domain.SuggestionType с валидацией
func (r *ListSuggestionsRequest) ToDomainType() (*domain.SuggestionType, error) {
	if r.Type == nil {
		return nil, nil
	}

	t := domain.SuggestionType(*r.Type)
	if !t.Valid() {
		return nil, ErrInvalidSuggestionType
	}
	return &t, nil
}

// AcceptSuggestionRequest запрос на принятие или отклонение рекомендации
type AcceptSuggestionRequest struct {
	Accepted bool `json:"accepted"`
}

// Response модели

// SuggestionResponse ответ с данными рекомендации
type SuggestionResponse struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"businessId"`
	Type       string    `json:"type"`
	Suggestion string    `json:"suggestion"`
	Reasoning  string    `json:"reasoning"`
	Priority   int       `json:"priority"`
	IsAccepted *bool     `json:"isAccepted,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SuggestionListResponse ответ со списком рекомендаций
type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// RefreshSuggestionsResponse результат пересчёта рекомендаций
type RefreshSuggestionsResponse struct {
	Created          int                  `json:"created"`
	InsightsComputed int                  `json:"insightsComputed"`
	Suggestions      []SuggestionResponse `json:"suggestions"`
}

// ClientInsightResponse ответ с инсайтом по клиенту
type ClientInsightResponse struct {
	ID          int64           `json:"id"`
	BusinessID  int64           `json:"businessId"`
	ClientEmail string          `json:"clientEmail"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	Confidence  int             `json:"confidence"`
	ComputedAt  time.Time       `json:"computedAt"`
}

// ClientInsightListResponse ответ со списком инсайтов клиента
type ClientInsightListResponse struct {
	Insights []ClientInsightResponse `json:"insights"`
}

// Методы конвертации

// FromDomainSuggestion конвертирует domain модель в DTO
func FromDomainSuggestion(s *domain.SchedulingSuggestion) *SuggestionResponse {
	if s == nil {
		return nil
	}

	return &SuggestionResponse{
		ID:         s.ID,
		BusinessID: s.BusinessID,
		Type:       string(s.Type),
		Suggestion: s.Suggestion,
		Reasoning:  s.Reasoning,
		Priority:   s.Priority,
		IsAccepted: s.IsAccepted,
		CreatedAt:  s.CreatedAt,
	}
}

// FromDomainSuggestionList конвертирует список domain моделей в DTO
func FromDomainSuggestionList(suggestions []*domain.SchedulingSuggestion) *SuggestionListResponse {
	resp := &SuggestionListResponse{
		Suggestions: make([]SuggestionResponse, 0, len(suggestions)),
	}

	for _, s := range suggestions {
		if sResp := FromDomainSuggestion(s); sResp != nil {
			resp.Suggestions = append(resp.Suggestions, *sResp)
		}
	}

	return resp
}

// FromDomainInsight конвертирует domain модель инсайта в DTO
func FromDomainInsight(i *domain.ClientInsight) *ClientInsightResponse {
	if i == nil {
		return nil
	}

	return &ClientInsightResponse{
		ID:          i.ID,
		BusinessID:  i.BusinessID,
		ClientEmail: i.ClientEmail,
		Type:        string(i.Type),
		Data:        i.Data,
		Confidence:  i.Confidence,
		ComputedAt:  i.ComputedAt,
	}
}

// FromDomainInsightList конвертирует список инсайтов в DTO
func FromDomainInsightList(insights []*domain.ClientInsight) *ClientInsightListResponse {
	resp := &ClientInsightListResponse{
		Insights: make([]ClientInsightResponse, 0, len(insights)),
	}

	for _, i := range insights {
		if iResp := FromDomainInsight(i); iResp != nil {
			resp.Insights = append(resp.Insights, *iResp)
		}
	}

	return resp
}
