package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/dbmetrics"
	"github.com/avdk/BMS-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий недельных шаблонов доступности
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или полностью перезаписывает шаблон дня недели.
// Пара (business_id, weekday) уникальна - шаблон на день всегда один.
func (r *Repository) Upsert(ctx context.Context, tpl *domain.WeekdayTemplate) (*domain.WeekdayTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Для закрытого дня open/close могут быть пустыми - пишем NULL
	var openTime, closeTime interface{}
	if !tpl.OpenTime.IsZero() {
		openTime = tpl.OpenTime
	}
	if !tpl.CloseTime.IsZero() {
		closeTime = tpl.CloseTime
	}

	query, args, err := psqlbuilder.Insert("weekday_templates").
		Columns(
			"business_id",
			"weekday",
			"is_open",
			"open_time",
			"close_time",
			"slot_duration_minutes",
		).
		Values(
			tpl.BusinessID,
			int(tpl.Weekday),
			tpl.IsOpen,
			openTime,
			closeTime,
			tpl.SlotDurationMinutes,
		).
		Suffix(`ON CONFLICT (business_id, weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return tpl, nil
}

// GetByBusinessAndWeekday получает шаблон бизнеса на день недели
func (r *Repository) GetByBusinessAndWeekday(ctx context.Context, businessID int64, weekday domain.Weekday) (*domain.WeekdayTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := templateSelect().
		Where(squirrel.Eq{
			"business_id": businessID,
			"weekday":     int(weekday),
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessAndWeekday - build select query: %v", ErrBuildQuery, err)
	}

	tpl, err := scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessAndWeekday - scan template: %w", ErrScanRow, err)
	}

	return tpl, nil
}

// GetWeek получает все явные шаблоны бизнеса, упорядоченные по дню недели.
// Дни без записи дополняются до полной недели на уровне сервиса.
func (r *Repository) GetWeek(ctx context.Context, businessID int64) ([]*domain.WeekdayTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := templateSelect().
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeek - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeek - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.WeekdayTemplate, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetWeek - scan row: %w", ErrScanRow, err)
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeek - rows error: %w", ErrScanRow, err)
	}

	return templates, nil
}

func templateSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"business_id",
		"weekday",
		"is_open",
		"open_time",
		"close_time",
		"slot_duration_minutes",
		"created_at",
		"updated_at",
	).From("weekday_templates")
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*domain.WeekdayTemplate, error) {
	var tpl domain.WeekdayTemplate
	var weekday int
	var openTime, closeTime sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&tpl.ID,
		&tpl.BusinessID,
		&weekday,
		&tpl.IsOpen,
		&openTime,
		&closeTime,
		&tpl.SlotDurationMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Weekday = domain.Weekday(weekday)
	if openTime.Valid {
		if err := tpl.OpenTime.Scan(openTime.String); err != nil {
			return nil, err
		}
	}
	if closeTime.Valid {
		if err := tpl.CloseTime.Scan(closeTime.String); err != nil {
			return nil, err
		}
	}
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return &tpl, nil
}
