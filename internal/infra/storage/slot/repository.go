package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/pgerrors"
	"github.com/m04kA/SMC-SlotBooking/pkg/psqlbuilder"
)

const table = "booking_slots"

// Columns колонки слота в порядке сканирования, нужны и репозиторию бронирований для JOIN
var Columns = []string{
	"id",
	"teacher_id",
	"class_id",
	"subject",
	"kind",
	"slot_date",
	"start_time",
	"end_time",
	"seat_limit",
	"notes",
	"created_at",
	"updated_at",
	"deleted_at",
}

// Repository репозиторий слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый слот
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"teacher_id",
			"class_id",
			"subject",
			"kind",
			"slot_date",
			"start_time",
			"end_time",
			"seat_limit",
			"notes",
		).
		Values(
			slot.TeacherID,
			slot.ClassID,
			slot.Subject,
			slot.Kind,
			slot.Date.Format(domain.DateFormat),
			slot.StartTime,
			slot.EndTime,
			slot.SeatLimit,
			slot.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := slot.Clone()
	err = executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if pgerrors.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: Create - %s", ErrConstraint, pgerrors.Constraint(err))
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return created, nil
}

// GetByID получает слот по ID, удаленные слоты не возвращаются
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.get(ctx, "GetByID", id, false, false)
}

// GetByIDIncludeDeleted получает слот по ID, включая удаленные (для истории бронирований)
func (r *Repository) GetByIDIncludeDeleted(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.get(ctx, "GetByIDIncludeDeleted", id, true, false)
}

// GetByIDForUpdate получает слот и блокирует его строку до конца транзакции.
// Все попытки записи на один слот выстраиваются в очередь на этой блокировке,
// поэтому подсчет подтвержденных бронирований после нее видит все коммиты предыдущего владельца.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, fmt.Errorf("%w: GetByIDForUpdate", ErrNoTransaction)
	}
	return r.get(ctx, "GetByIDForUpdate", id, false, true)
}

func (r *Repository) get(ctx context.Context, op string, id int64, includeDeleted, forUpdate bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(Columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if !includeDeleted {
		builder = builder.Where(squirrel.Eq{"deleted_at": nil})
	}
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	slot, err := ScanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %v", ErrScanRow, op, err)
	}

	return slot, nil
}

// Update сохраняет изменяемые поля слота
func (r *Repository) Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("subject", slot.Subject).
		Set("kind", slot.Kind).
		Set("slot_date", slot.Date.Format(domain.DateFormat)).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("seat_limit", slot.SeatLimit).
		Set("notes", slot.Notes).
		Set("updated_at", psqlbuilder.Now()).
		Where(squirrel.Eq{"id": slot.ID, "deleted_at": nil}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	updated := slot.Clone()
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updated.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		if pgerrors.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: Update - %s", ErrConstraint, pgerrors.Constraint(err))
		}
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return updated, nil
}

// SoftDelete помечает слот удаленным.
// Отмену бронирований слота вызывающий выполняет в той же транзакции.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("deleted_at", psqlbuilder.Now()).
		Set("updated_at", psqlbuilder.Now()).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// List возвращает неудаленные слоты класса и/или учителя за период, по дате и времени начала
func (r *Repository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(Columns...).
		From(table).
		Where(squirrel.Eq{"deleted_at": nil}).
		Where(squirrel.GtOrEq{"slot_date": filter.From.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"slot_date": filter.To.Format(domain.DateFormat)}).
		OrderBy("slot_date ASC", "start_time ASC", "id ASC")

	if filter.ClassID != nil {
		builder = builder.Where(squirrel.Eq{"class_id": *filter.ClassID})
	}
	if filter.TeacherID != nil {
		builder = builder.Where(squirrel.Eq{"teacher_id": *filter.TeacherID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := ScanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan slot: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// RowScanner общий интерфейс *sql.Row и *sql.Rows
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanSlot сканирует колонки Columns
func ScanSlot(row RowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var deletedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.ClassID,
		&slot.Subject,
		&slot.Kind,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.SeatLimit,
		&slot.Notes,
		&slot.CreatedAt,
		&slot.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		slot.DeletedAt = &deletedAt.Time
	}
	return &slot, nil
}
