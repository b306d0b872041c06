package pgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "bookings_one_confirmed_per_student"}
	pgxErr := &pgconn.PgError{Code: "23514", ConstraintName: "booking_slots_seat_limit_check"}

	assert.True(t, IsUniqueViolation(pqErr))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pqErr)))
	assert.Equal(t, "bookings_one_confirmed_per_student", Constraint(pqErr))

	assert.True(t, IsCheckViolation(pgxErr))
	assert.False(t, IsUniqueViolation(pgxErr))
	assert.Equal(t, "booking_slots_seat_limit_check", Constraint(pgxErr))

	assert.Empty(t, Code(errors.New("plain")))
	assert.False(t, IsSerializationFailure(nil))
}
