package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/pgerrors"
	"github.com/m04kA/SMC-SlotBooking/pkg/psqlbuilder"
)

const table = "bookings"

var columns = []string{
	"id",
	"slot_id",
	"student_id",
	"status",
	"cancel_reason",
	"cancelled_at",
	"created_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// InsertIfCapacityAvailable создает подтвержденное бронирование, если в слоте есть место.
//
// Единственная точка допуска новых бронирований. Вызывать только в транзакции,
// в которой строка слота уже заблокирована через slot.Repository.GetByIDForUpdate.
// Без этой блокировки пара "посчитать, потом вставить" является гонкой TOCTOU:
// два студента одновременно видят свободное последнее место и оба получают подтверждение.
// Под блокировкой в READ COMMITTED подсчет выполняется отдельным запросом после нее
// и видит все бронирования, закоммиченные предыдущим владельцем блокировки.
// Частичный уникальный индекс bookings_one_confirmed_per_student страхует от повторной записи студента.
func (r *Repository) InsertIfCapacityAvailable(ctx context.Context, slot *domain.Slot, studentID uuid.UUID) (*domain.Booking, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, fmt.Errorf("%w: InsertIfCapacityAvailable", ErrNoTransaction)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if !slot.IsUnlimited() {
		confirmed, err := r.CountConfirmed(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if confirmed >= slot.SeatLimit {
			return nil, ErrSlotFull
		}
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("slot_id", "student_id", "status").
		Values(slot.ID, studentID, domain.StatusConfirmed).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: InsertIfCapacityAvailable - build insert query: %v", ErrBuildQuery, err)
	}

	booking := &domain.Booking{
		SlotID:    slot.ID,
		StudentID: studentID,
		Status:    domain.StatusConfirmed,
	}
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return nil, ErrAlreadyBooked
		}
		return nil, fmt.Errorf("%w: InsertIfCapacityAvailable - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// CountConfirmed считает подтвержденные бронирования слота
func (r *Repository) CountConfirmed(ctx context.Context, slotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"slot_id": slotID, "status": domain.StatusConfirmed}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountConfirmed - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountConfirmed - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// CountConfirmedBySlots считает подтвержденные бронирования для нескольких слотов одним запросом.
// Слоты без бронирований в результат не попадают.
func (r *Repository) CountConfirmedBySlots(ctx context.Context, slotIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_id", "COUNT(*)").
		From(table).
		Where(squirrel.Eq{"slot_id": slotIDs, "status": domain.StatusConfirmed}).
		GroupBy("slot_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var slotID int64
		var count int
		if err := rows.Scan(&slotID, &count); err != nil {
			return nil, fmt.Errorf("%w: CountConfirmedBySlots - scan row: %v", ErrScanRow, err)
		}
		counts[slotID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlots - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetConfirmedBySlotAndStudent возвращает подтвержденное бронирование студента на слот
func (r *Repository) GetConfirmedBySlotAndStudent(ctx context.Context, slotID int64, studentID uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"slot_id":    slotID,
			"student_id": studentID,
			"status":     domain.StatusConfirmed,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedBySlotAndStudent - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedBySlotAndStudent - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// ListBySlot возвращает бронирования слота в порядке создания.
// Опционально фильтрует по статусу
func (r *Repository) ListBySlot(ctx context.Context, slotID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"slot_id": slotID}).
		OrderBy("created_at ASC", "id ASC")
	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBySlot - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// ListByStudent возвращает бронирования студента вместе со слотами (включая удаленные слоты),
// от ближайших к дальним
func (r *Repository) ListByStudent(ctx context.Context, filter domain.StudentBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectColumns := make([]string, 0, len(columns)+len(slotRepo.Columns))
	for _, c := range columns {
		selectColumns = append(selectColumns, "b."+c)
	}
	for _, c := range slotRepo.Columns {
		selectColumns = append(selectColumns, "s."+c)
	}

	builder := psqlbuilder.Select(selectColumns...).
		From(table + " b").
		Join("booking_slots s ON s.id = b.slot_id").
		Where(squirrel.Eq{"b.student_id": filter.StudentID}).
		OrderBy("s.slot_date ASC", "s.start_time ASC", "b.id ASC")

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"b.status": *filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"s.slot_date": filter.From.Format(domain.DateFormat)})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.LtOrEq{"s.slot_date": filter.To.Format(domain.DateFormat)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStudent - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStudent - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBookingWithSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByStudent - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByStudent - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// Cancel переводит подтвержденное бронирование в cancelled.
// Возвращает false, если бронирование уже было отменено (повторная отмена ничего не меняет)
func (r *Repository) Cancel(ctx context.Context, id int64, reason domain.CancelReason) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", psqlbuilder.Now()).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// CancelAllBySlot отменяет все подтвержденные бронирования слота и возвращает затронутых студентов
func (r *Repository) CancelAllBySlot(ctx context.Context, slotID int64, reason domain.CancelReason) ([]uuid.UUID, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", psqlbuilder.Now()).
		Where(squirrel.Eq{"slot_id": slotID, "status": domain.StatusConfirmed}).
		Suffix("RETURNING student_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelAllBySlot - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CancelAllBySlot - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	studentIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var studentID uuid.UUID
		if err := rows.Scan(&studentID); err != nil {
			return nil, fmt.Errorf("%w: CancelAllBySlot - scan student_id: %v", ErrScanRow, err)
		}
		studentIDs = append(studentIDs, studentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CancelAllBySlot - rows error: %v", ErrScanRow, err)
	}

	return studentIDs, nil
}

func scanBooking(row slotRepo.RowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	if err := row.Scan(bookingDest(&booking)...); err != nil {
		return nil, err
	}
	return &booking, nil
}

func scanBookingWithSlot(row slotRepo.RowScanner) (*domain.Booking, error) {
	var booking domain.Booking

	// колонки бронирования идут первыми, слот читается после них
	slot, err := slotRepo.ScanSlot(prefixScanner{row: row, prefix: bookingDest(&booking)})
	if err != nil {
		return nil, err
	}
	booking.Slot = slot
	return &booking, nil
}

func bookingDest(b *domain.Booking) []interface{} {
	return []interface{}{
		&b.ID,
		&b.SlotID,
		&b.StudentID,
		&b.Status,
		&b.CancelReason,
		&b.CancelledAt,
		&b.CreatedAt,
	}
}

// prefixScanner подставляет dest бронирования перед колонками слота
type prefixScanner struct {
	row    slotRepo.RowScanner
	prefix []interface{}
}

func (p prefixScanner) Scan(dest ...interface{}) error {
	return p.row.Scan(append(p.prefix, dest...)...)
}
