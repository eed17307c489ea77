package domain

import (
	"encoding/json"
	"time"
)

// SuggestionType тип рекомендации планировщика
type SuggestionType string

const (
	SuggestionBusyHours   SuggestionType = "busy-hours"
	SuggestionOptimalSlot SuggestionType = "optimal-slot"
	SuggestionRebooking   SuggestionType = "rebooking"
	SuggestionPricing     SuggestionType = "pricing"
	SuggestionSchedule    SuggestionType = "schedule"
)

// Valid returns true for known suggestion types.
func (t SuggestionType) Valid() bool {
	switch t {
	case SuggestionBusyHours, SuggestionOptimalSlot, SuggestionRebooking,
		SuggestionPricing, SuggestionSchedule:
		return true
	}
	return false
}

// SchedulingSuggestion is a persisted analytics recommendation shown on the
// staff dashboard. Immutable after creation except for the IsAccepted flag.
type SchedulingSuggestion struct {
	ID         int64
	BusinessID int64
	Type       SuggestionType
	Suggestion string // краткий текст рекомендации
	Reasoning  string // обоснование с числами
	Priority   int    // 1 (низкий) .. 5 (высокий)
	IsAccepted *bool  // nil = сотрудники ещё не отреагировали
	CreatedAt  time.Time
}

// InsightType тип инсайта по клиенту
type InsightType string

const (
	InsightRebookingInterval InsightType = "rebooking-interval"
)

// ClientInsight is a derived per-client record. Recomputed on demand;
// a newer computation supersedes the previous one, they are never merged.
type ClientInsight struct {
	ID          int64
	BusinessID  int64
	ClientEmail string
	Type        InsightType
	Data        json.RawMessage // произвольный payload инсайта
	Confidence  int             // 1..5
	ComputedAt  time.Time
}

// RebookingInsightData payload инсайта rebooking-interval
type RebookingInsightData struct {
	AverageDays  int       `json:"averageDays"`
	Consistency  float64   `json:"consistency"`
	VisitCount   int       `json:"visitCount"`
	LastVisit    time.Time `json:"lastVisit"`
	NextExpected time.Time `json:"nextExpected"`
}
