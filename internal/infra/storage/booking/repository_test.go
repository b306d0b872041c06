package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/txmanager"
)

const (
	countQuery  = `SELECT COUNT\(\*\) FROM bookings WHERE slot_id = \$1 AND status = \$2$`
	insertQuery = `INSERT INTO bookings \(slot_id,student_id,status\) VALUES \(\$1,\$2,\$3\) RETURNING id, created_at$`
	lockQuery   = `FROM booking_slots WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE$`
)

type fixture struct {
	repo  *Repository
	slots *slotRepo.Repository
	tx    *txmanager.TransactionManager
	mock  sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	wrapped := dbmetrics.Wrap(db, nil)
	return &fixture{
		repo:  NewRepository(wrapped),
		slots: slotRepo.NewRepository(wrapped),
		tx:    txmanager.NewTransactionManager(wrapped),
		mock:  mock,
	}
}

func (f *fixture) insert(slot *domain.Slot, studentID uuid.UUID) (*domain.Booking, error) {
	var booking *domain.Booking
	err := f.tx.Do(context.Background(), func(ctx context.Context) error {
		var err error
		booking, err = f.repo.InsertIfCapacityAvailable(ctx, slot, studentID)
		return err
	})
	return booking, err
}

func limitedSlot(seats int) *domain.Slot {
	return &domain.Slot{ID: 7, Kind: domain.KindOral, SeatLimit: seats}
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(int64(n))
}

func insertedRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, time.Now())
}

func TestRepository_InsertIfCapacityAvailable_RequiresTransaction(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.InsertIfCapacityAvailable(context.Background(), limitedSlot(2), uuid.New())
	assert.ErrorIs(t, err, ErrNoTransaction)
}

func TestRepository_InsertIfCapacityAvailable_SeatFree(t *testing.T) {
	f := newFixture(t)
	studentID := uuid.New()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(countQuery).WithArgs(int64(7), "confirmed").WillReturnRows(countRows(1))
	f.mock.ExpectQuery(insertQuery).
		WithArgs(int64(7), studentID.String(), "confirmed").
		WillReturnRows(insertedRow(11))
	f.mock.ExpectCommit()

	booking, err := f.insert(limitedSlot(2), studentID)
	require.NoError(t, err)

	assert.Equal(t, int64(11), booking.ID)
	assert.Equal(t, int64(7), booking.SlotID)
	assert.Equal(t, studentID, booking.StudentID)
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
}

func TestRepository_InsertIfCapacityAvailable_SlotFull(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(countQuery).WithArgs(int64(7), "confirmed").WillReturnRows(countRows(2))
	f.mock.ExpectRollback()

	_, err := f.insert(limitedSlot(2), uuid.New())
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestRepository_InsertIfCapacityAvailable_UnlimitedSkipsCount(t *testing.T) {
	f := newFixture(t)
	slot := &domain.Slot{ID: 7, Kind: domain.KindWrittenExam, SeatLimit: domain.UnlimitedSeatLimit}

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(insertQuery).WillReturnRows(insertedRow(12))
	f.mock.ExpectCommit()

	booking, err := f.insert(slot, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(12), booking.ID)
}

func TestRepository_InsertIfCapacityAvailable_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		insertErr error
		wantErr   error
	}{
		{name: "lib/pq unique violation", insertErr: &pq.Error{Code: "23505"}, wantErr: ErrAlreadyBooked},
		{name: "pgx unique violation", insertErr: &pgconn.PgError{Code: "23505"}, wantErr: ErrAlreadyBooked},
		{name: "other failure", insertErr: errors.New("connection reset"), wantErr: ErrExecQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.mock.ExpectBegin()
			f.mock.ExpectQuery(countQuery).WillReturnRows(countRows(0))
			f.mock.ExpectQuery(insertQuery).WillReturnError(tt.insertErr)
			f.mock.ExpectRollback()

			_, err := f.insert(limitedSlot(2), uuid.New())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepository_InsertIfCapacityAvailable_CountFailure(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(countQuery).WillReturnError(errors.New("connection reset"))
	f.mock.ExpectRollback()

	_, err := f.insert(limitedSlot(2), uuid.New())
	assert.ErrorIs(t, err, ErrScanRow)
}

// Порядок запросов при записи: блокировка слота, подсчет, вставка
func TestRepository_AdmissionRunsUnderSlotLock(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockQuery).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows(slotRepo.Columns).AddRow(
			int64(7), uuid.NewString(), uuid.NewString(), "Storia", "oral",
			time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), "10:00:00", nil,
			int64(1), nil, created, created, nil,
		),
	)
	f.mock.ExpectQuery(countQuery).WithArgs(int64(7), "confirmed").WillReturnRows(countRows(0))
	f.mock.ExpectQuery(insertQuery).WillReturnRows(insertedRow(13))
	f.mock.ExpectCommit()

	err := f.tx.Do(context.Background(), func(ctx context.Context) error {
		slot, err := f.slots.GetByIDForUpdate(ctx, 7)
		if err != nil {
			return err
		}
		_, err = f.repo.InsertIfCapacityAvailable(ctx, slot, uuid.New())
		return err
	})
	require.NoError(t, err)
}

func TestRepository_CountConfirmed(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(countQuery).WithArgs(int64(7), "confirmed").WillReturnRows(countRows(4))

	count, err := f.repo.CountConfirmed(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRepository_Cancel(t *testing.T) {
	const query = `UPDATE bookings SET status = \$1, cancel_reason = \$2, cancelled_at = NOW\(\) WHERE id = \$3 AND status = \$4$`

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "confirmed booking", affected: 1, want: true},
		{name: "already cancelled", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mock.ExpectExec(query).
				WithArgs("cancelled", "student", int64(5), "confirmed").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			changed, err := f.repo.Cancel(context.Background(), 5, domain.CancelReasonStudent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, changed)
		})
	}

	t.Run("driver failure", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectExec(query).WillReturnError(errors.New("connection reset"))

		_, err := f.repo.Cancel(context.Background(), 5, domain.CancelReasonStudent)
		assert.ErrorIs(t, err, ErrExecQuery)
	})
}

func TestRepository_CancelAllBySlot(t *testing.T) {
	const query = `UPDATE bookings SET status = \$1, cancel_reason = \$2, cancelled_at = NOW\(\) WHERE slot_id = \$3 AND status = \$4 RETURNING student_id$`

	t.Run("returns cancelled students", func(t *testing.T) {
		f := newFixture(t)
		first, second := uuid.New(), uuid.New()

		f.mock.ExpectQuery(query).
			WithArgs("cancelled", "slot_deleted", int64(7), "confirmed").
			WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(first.String()).AddRow(second.String()))

		students, err := f.repo.CancelAllBySlot(context.Background(), 7, domain.CancelReasonSlotDeleted)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, students)
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"student_id"}))

		students, err := f.repo.CancelAllBySlot(context.Background(), 7, domain.CancelReasonSlotDeleted)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("driver failure", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectQuery(query).WillReturnError(errors.New("connection reset"))

		_, err := f.repo.CancelAllBySlot(context.Background(), 7, domain.CancelReasonSlotDeleted)
		assert.ErrorIs(t, err, ErrExecQuery)
	})
}
