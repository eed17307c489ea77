package suggestion

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/dbmetrics"
	"github.com/avdk/BMS-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий рекомендаций планировщика и инсайтов по клиентам
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория рекомендаций
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую рекомендацию
func (r *Repository) Create(ctx context.Context, s *domain.SchedulingSuggestion) (*domain.SchedulingSuggestion, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("scheduling_suggestions").
		Columns(
			"business_id",
			"suggestion_type",
			"suggestion",
			"reasoning",
			"priority",
		).
		Values(
			s.BusinessID,
			s.Type,
			s.Suggestion,
			s.Reasoning,
			s.Priority,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	s.CreatedAt = createdAt.Time

	return s, nil
}

// ListByBusiness получает рекомендации бизнеса, опционально по типу.
// Сортировка: сначала приоритетные, внутри приоритета - свежие.
func (r *Repository) ListByBusiness(ctx context.Context, businessID int64, suggestionType *domain.SuggestionType) ([]*domain.SchedulingSuggestion, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"business_id",
		"suggestion_type",
		"suggestion",
		"reasoning",
		"priority",
		"is_accepted",
		"created_at",
	).
		From("scheduling_suggestions").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("priority DESC, created_at DESC")

	if suggestionType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"suggestion_type": *suggestionType})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBusiness - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	suggestions := make([]*domain.SchedulingSuggestion, 0)
	for rows.Next() {
		var s domain.SchedulingSuggestion
		var isAccepted sql.NullBool
		var createdAt sql.NullTime

		err := rows.Scan(
			&s.ID,
			&s.BusinessID,
			&s.Type,
			&s.Suggestion,
			&s.Reasoning,
			&s.Priority,
			&isAccepted,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBusiness - scan row: %w", ErrScanRow, err)
		}

		if isAccepted.Valid {
			s.IsAccepted = &isAccepted.Bool
		}
		s.CreatedAt = createdAt.Time

		suggestions = append(suggestions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBusiness - rows error: %w", ErrScanRow, err)
	}

	return suggestions, nil
}

// SetAccepted устанавливает флаг принятия рекомендации сотрудником.
// Единственное изменяемое поле рекомендации.
func (r *Repository) SetAccepted(ctx context.Context, id int64, accepted bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("scheduling_suggestions").
		Set("is_accepted", accepted).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAccepted - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAccepted - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAccepted - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSuggestionNotFound
	}

	return nil
}

// ReplaceInsight сохраняет инсайт по клиенту, вытесняя предыдущее вычисление.
// Инсайты не мёржатся: новое вычисление полностью заменяет старое.
func (r *Repository) ReplaceInsight(ctx context.Context, insight *domain.ClientInsight) (*domain.ClientInsight, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("client_insights").
		Columns(
			"business_id",
			"client_email",
			"insight_type",
			"data",
			"confidence",
		).
		Values(
			insight.BusinessID,
			insight.ClientEmail,
			insight.Type,
			[]byte(insight.Data),
			insight.Confidence,
		).
		Suffix(`ON CONFLICT (business_id, client_email, insight_type) DO UPDATE SET
			data = EXCLUDED.data,
			confidence = EXCLUDED.confidence,
			computed_at = NOW()
			RETURNING id, computed_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ReplaceInsight - build insert query: %v", ErrBuildQuery, err)
	}

	var computedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&insight.ID, &computedAt); err != nil {
		return nil, fmt.Errorf("%w: ReplaceInsight - execute insert: %w", ErrExecQuery, err)
	}
	insight.ComputedAt = computedAt.Time

	return insight, nil
}

// GetInsightsByClient получает все инсайты по клиенту бизнеса
func (r *Repository) GetInsightsByClient(ctx context.Context, businessID int64, clientEmail string) ([]*domain.ClientInsight, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"client_email",
		"insight_type",
		"data",
		"confidence",
		"computed_at",
	).
		From("client_insights").
		Where(squirrel.Eq{
			"business_id":  businessID,
			"client_email": clientEmail,
		}).
		OrderBy("insight_type ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetInsightsByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetInsightsByClient - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	insights := make([]*domain.ClientInsight, 0)
	for rows.Next() {
		var insight domain.ClientInsight
		var data []byte
		var computedAt sql.NullTime

		err := rows.Scan(
			&insight.ID,
			&insight.BusinessID,
			&insight.ClientEmail,
			&insight.Type,
			&data,
			&insight.Confidence,
			&computedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetInsightsByClient - scan row: %w", ErrScanRow, err)
		}

		insight.Data = data
		insight.ComputedAt = computedAt.Time

		insights = append(insights, &insight)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetInsightsByClient - rows error: %w", ErrScanRow, err)
	}

	return insights, nil
}
