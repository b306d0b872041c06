package slot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/txmanager"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

func newMockRepository(t *testing.T) (*Repository, *txmanager.TransactionManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), txmanager.NewTransactionManager(wrapped), mock
}

func slotRow(id int64, teacherID, classID uuid.UUID) *sqlmock.Rows {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(Columns).AddRow(
		id, teacherID.String(), classID.String(), "Storia", "oral",
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), "10:00:00", nil,
		int64(3), nil, created, created, nil,
	)
}

func TestRepository_GetByIDForUpdate_RequiresTransaction(t *testing.T) {
	repo, _, _ := newMockRepository(t)

	_, err := repo.GetByIDForUpdate(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoTransaction)
}

func TestRepository_GetByIDForUpdate_LocksRow(t *testing.T) {
	repo, tx, mock := newMockRepository(t)
	teacherID, classID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM booking_slots WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE$`).
		WithArgs(int64(7)).
		WillReturnRows(slotRow(7, teacherID, classID))
	mock.ExpectCommit()

	var got *domain.Slot
	err := tx.Do(context.Background(), func(ctx context.Context) error {
		var err error
		got, err = repo.GetByIDForUpdate(ctx, 7)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, teacherID, got.TeacherID)
	assert.Equal(t, classID, got.ClassID)
	assert.Equal(t, domain.KindOral, got.Kind)
	assert.Equal(t, types.TimeString("10:00"), got.StartTime)
	assert.Nil(t, got.EndTime)
	assert.Equal(t, 3, got.SeatLimit)
	assert.Nil(t, got.DeletedAt)
}

func TestRepository_Get_WithoutLock(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM booking_slots WHERE id = \$1 AND deleted_at IS NULL$`).
		WithArgs(int64(7)).
		WillReturnRows(slotRow(7, uuid.New(), uuid.New()))
	mock.ExpectQuery(`FROM booking_slots WHERE id = \$1$`).
		WithArgs(int64(7)).
		WillReturnRows(slotRow(7, uuid.New(), uuid.New()))

	_, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	_, err = repo.GetByIDIncludeDeleted(ctx, 7)
	require.NoError(t, err)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM booking_slots WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(Columns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRepository_SoftDelete(t *testing.T) {
	const query = `UPDATE booking_slots SET deleted_at = NOW\(\), updated_at = NOW\(\) WHERE deleted_at IS NULL AND id = \$1`

	t.Run("marks slot deleted", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)
		mock.ExpectExec(query).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SoftDelete(context.Background(), 7))
	})

	t.Run("already deleted", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)
		mock.ExpectExec(query).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SoftDelete(context.Background(), 7), ErrSlotNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)
		mock.ExpectExec(query).WithArgs(int64(7)).WillReturnError(errors.New("connection reset"))

		assert.ErrorIs(t, repo.SoftDelete(context.Background(), 7), ErrExecQuery)
	})
}

func TestRepository_Create_CheckViolation(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO booking_slots .* RETURNING id, created_at, updated_at`).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "booking_slots_end_after_start"})

	_, err := repo.Create(context.Background(), &domain.Slot{
		TeacherID: uuid.New(),
		ClassID:   uuid.New(),
		Subject:   "Storia",
		Kind:      domain.KindOral,
		Date:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		SeatLimit: 3,
	})
	assert.ErrorIs(t, err, ErrConstraint)
	assert.Contains(t, err.Error(), "booking_slots_end_after_start")
}
