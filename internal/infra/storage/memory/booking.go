package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти, ошибки совпадают с PostgreSQL репозиторием
type BookingRepository struct {
	store *Store
}

// InsertIfCapacityAvailable проверка места и вставка происходят в одной транзакции хранилища,
// которую никто другой не может прервать до фиксации
func (r *BookingRepository) InsertIfCapacityAvailable(ctx context.Context, slot *domain.Slot, studentID uuid.UUID) (*domain.Booking, error) {
	tx, ok := r.store.txFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: InsertIfCapacityAvailable", bookingRepo.ErrNoTransaction)
	}
	st := tx.state

	if !slot.IsUnlimited() && st.confirmedCount(slot.ID) >= slot.SeatLimit {
		return nil, bookingRepo.ErrSlotFull
	}
	for _, b := range st.bookings {
		// аналог частичного уникального индекса (slot_id, student_id) WHERE status = 'confirmed'
		if b.SlotID == slot.ID && b.StudentID == studentID && b.IsConfirmed() {
			return nil, bookingRepo.ErrAlreadyBooked
		}
	}

	st.nextBookingID++
	booking := &domain.Booking{
		ID:        st.nextBookingID,
		SlotID:    slot.ID,
		StudentID: studentID,
		Status:    domain.StatusConfirmed,
		CreatedAt: r.store.now(),
	}
	st.bookings[booking.ID] = booking.Clone()

	return booking, nil
}

func (r *BookingRepository) CountConfirmed(ctx context.Context, slotID int64) (int, error) {
	var count int
	err := r.store.read(ctx, func(st *state) error {
		count = st.confirmedCount(slotID)
		return nil
	})
	return count, err
}

func (r *BookingRepository) CountConfirmedBySlots(ctx context.Context, slotIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(slotIDs))
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range slotIDs {
			if c := st.confirmedCount(id); c > 0 {
				counts[id] = c
			}
		}
		return nil
	})
	return counts, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var found *domain.Booking
	err := r.store.read(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		found = b.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *BookingRepository) GetConfirmedBySlotAndStudent(ctx context.Context, slotID int64, studentID uuid.UUID) (*domain.Booking, error) {
	var found *domain.Booking
	err := r.store.read(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.SlotID == slotID && b.StudentID == studentID && b.IsConfirmed() {
				found = b.Clone()
				return nil
			}
		}
		return bookingRepo.ErrBookingNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *BookingRepository) ListBySlot(ctx context.Context, slotID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.SlotID != slotID {
				continue
			}
			if status != nil && b.Status != *status {
				continue
			}
			bookings = append(bookings, b.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (r *BookingRepository) ListByStudent(ctx context.Context, filter domain.StudentBookingsFilter) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.StudentID != filter.StudentID {
				continue
			}
			if filter.Status != nil && b.Status != *filter.Status {
				continue
			}
			slot, ok := st.slots[b.SlotID]
			if !ok {
				continue
			}
			day := slot.Date.Format(domain.DateFormat)
			if filter.From != nil && day < filter.From.Format(domain.DateFormat) {
				continue
			}
			if filter.To != nil && day > filter.To.Format(domain.DateFormat) {
				continue
			}
			withSlot := b.Clone()
			withSlot.Slot = slot.Clone()
			bookings = append(bookings, withSlot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		da, db := a.Slot.Date.Format(domain.DateFormat), b.Slot.Date.Format(domain.DateFormat)
		if da != db {
			return da < db
		}
		if a.Slot.StartTime != b.Slot.StartTime {
			return a.Slot.StartTime < b.Slot.StartTime
		}
		return a.ID < b.ID
	})
	return bookings, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason domain.CancelReason) (bool, error) {
	var changed bool
	err := r.store.write(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok || !b.IsConfirmed() {
			return nil
		}
		cancel(b, reason, r.store.now())
		changed = true
		return nil
	})
	return changed, err
}

func (r *BookingRepository) CancelAllBySlot(ctx context.Context, slotID int64, reason domain.CancelReason) ([]uuid.UUID, error) {
	studentIDs := make([]uuid.UUID, 0)
	err := r.store.write(ctx, func(st *state) error {
		now := r.store.now()
		ids := make([]int64, 0)
		for id, b := range st.bookings {
			if b.SlotID == slotID && b.IsConfirmed() {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			b := st.bookings[id]
			cancel(b, reason, now)
			studentIDs = append(studentIDs, b.StudentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return studentIDs, nil
}

func cancel(b *domain.Booking, reason domain.CancelReason, at time.Time) {
	b.Status = domain.StatusCancelled
	b.CancelReason = &reason
	b.CancelledAt = &at
}
