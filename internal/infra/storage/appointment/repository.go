package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/dbmetrics"
	"github.com/avdk/BMS-SchedulingService/pkg/psqlbuilder"
)

// appointmentColumns полный список колонок таблицы appointments
var appointmentColumns = []string{
	"id",
	"business_id",
	"service_id",
	"resource_id",
	"date",
	"start_time",
	"end_time",
	"status",
	"client_name",
	"client_email",
	"client_phone",
	"is_direct_booking",
	"staff_notes",
	"approved_at",
	"declined_at",
	"decline_reason",
	"service_name",
	"service_price",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись на приём.
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Создание записи с проверкой доступности слота должно выполняться в
// сериализуемой транзакции - иначе два конкурентных запроса могут оба
// увидеть свободный слот и оба вставить запись.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"business_id",
			"service_id",
			"resource_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"client_name",
			"client_email",
			"client_phone",
			"is_direct_booking",
			"staff_notes",
			"service_name",
			"service_price",
		).
		Values(
			appt.BusinessID,
			appt.ServiceID,
			appt.ResourceID,
			appt.Date,
			appt.StartTime,
			appt.EndTime,
			appt.Status,
			appt.ClientName,
			appt.ClientEmail,
			appt.ClientPhone,
			appt.IsDirectBooking,
			appt.StaffNotes,
			appt.ServiceName,
			appt.ServicePrice,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// GetByBusinessWithFilter получает записи бизнеса с гибкой фильтрацией.
// Для выборки на конкретную дату внутри транзакции добавляет FOR UPDATE -
// это критическая секция проверки конфликта при создании записи.
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	// Фильтрация по мастеру (если указан)
	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"date": *filter.EndDate})
	}

	// Фильтрация по клиенту
	if filter.ClientEmail != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_email": *filter.ClientEmail})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Без явного статуса отдаём только записи, удерживающие слот
		activeStatusStrings := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings})
	}

	singleDate := filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate)

	// Для конкретной даты сортируем по времени начала, для периода - сначала новые
	if singleDate {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("date DESC, start_time DESC")
	}

	// Блокировка строк внутри транзакции создания записи
	if dbmetrics.IsInTransaction(ctx) && singleDate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByClientEmail получает историю записей клиента в хронологическом порядке.
// Используется аналитикой для прогноза интервала повторной записи.
func (r *Repository) GetByClientEmail(ctx context.Context, businessID int64, clientEmail string) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{
			"business_id":  businessID,
			"client_email": clientEmail,
		}).
		OrderBy("date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientEmail - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientEmail - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetDistinctClientEmails получает список всех клиентов, когда-либо записывавшихся
// к бизнесу. Используется аналитикой для пакетного пересчёта инсайтов.
func (r *Repository) GetDistinctClientEmails(ctx context.Context, businessID int64) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT client_email").
		From("appointments").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.NotEq{"client_email": ""}).
		OrderBy("client_email ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDistinctClientEmails - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDistinctClientEmails - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%w: GetDistinctClientEmails - scan client_email: %w", ErrScanRow, err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetDistinctClientEmails - rows error: %w", ErrScanRow, err)
	}

	return emails, nil
}

// GetApprovedByWeekdayFromDate получает подтверждённые записи бизнеса на заданный
// день недели начиная с указанной даты. EXTRACT(DOW) в PostgreSQL использует то же
// соглашение 0=воскресенье, что и domain.Weekday.
// Используется для поиска записей, осиротевших после изменения расписания.
func (r *Repository) GetApprovedByWeekdayFromDate(ctx context.Context, businessID int64, weekday domain.Weekday, from time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{
			"business_id": businessID,
			"status":      domain.StatusApproved,
		}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Expr("EXTRACT(DOW FROM date) = ?", int(weekday))).
		OrderBy("date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetApprovedByWeekdayFromDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetApprovedByWeekdayFromDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Approve переводит запись из pending в approved.
// Условие по статусу в WHERE - страховка от гонки: если запись уже не pending,
// обновление не пройдёт и вернётся ErrStatusConflict.
func (r *Repository) Approve(ctx context.Context, id int64, staffNotes *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("appointments").
		Set("status", domain.StatusApproved).
		Set("approved_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.StatusPending,
		})

	if staffNotes != nil {
		updateBuilder = updateBuilder.Set("staff_notes", *staffNotes)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Approve - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "Approve", query, args)
}

// Decline переводит запись из pending в declined с обязательной причиной
func (r *Repository) Decline(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusDeclined).
		Set("declined_at", squirrel.Expr("NOW()")).
		Set("decline_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.StatusPending,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Decline - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "Decline", query, args)
}

// UpdateStatus переводит запись из статуса from в статус to.
// Используется для переходов approved → completed/cancelled.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": from,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "UpdateStatus", query, args)
}

// execTransition выполняет update перехода статуса и интерпретирует rowsAffected
func (r *Repository) execTransition(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment сканирует одну строку в доменную модель
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.ServiceID,
		&appt.ResourceID,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.IsDirectBooking,
		&appt.StaffNotes,
		&appt.ApprovedAt,
		&appt.DeclinedAt,
		&appt.DeclineReason,
		&appt.ServiceName,
		&appt.ServicePrice,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}
