package book_slot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fixture struct {
	store    *memory.Store
	usecase  *UseCase
	bookings *bookings.Service
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	var m *metrics.Metrics
	log := logger.NewNop()

	uc := NewUseCase(store.Slots(), store.Bookings(), store, notifier, m, log)
	uc.timeProvider = fixedTime{t: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)}

	return &fixture{
		store:    store,
		usecase:  uc,
		bookings: bookings.NewService(store.Bookings(), store.Slots(), store, notifier, m, log),
		notifier: notifier,
	}
}

func (f *fixture) slot(t *testing.T, kind domain.SlotKind, seatLimit int) *domain.Slot {
	t.Helper()
	slot, err := f.store.Slots().Create(context.Background(), &domain.Slot{
		TeacherID: uuid.New(),
		ClassID:   uuid.New(),
		Subject:   "Maths",
		Kind:      kind,
		Date:      time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
		StartTime: types.TimeString("08:00"),
		SeatLimit: seatLimit,
	})
	require.NoError(t, err)
	return slot
}

func (f *fixture) confirmed(t *testing.T, slotID int64) int {
	t.Helper()
	count, err := f.store.Bookings().CountConfirmed(context.Background(), slotID)
	require.NoError(t, err)
	return count
}

func TestExecute_ThreeStudentsTwoSeats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.slot(t, domain.KindOral, 2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	bookingA, err := f.usecase.Execute(ctx, &Request{StudentID: a, SlotID: slot.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, bookingA.ConfirmedCount)

	bookingB, err := f.usecase.Execute(ctx, &Request{StudentID: b, SlotID: slot.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, bookingB.ConfirmedCount)
	require.NotNil(t, bookingB.SeatLimit)
	assert.Equal(t, 2, *bookingB.SeatLimit)

	_, err = f.usecase.Execute(ctx, &Request{StudentID: c, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrSlotFull)

	_, err = f.bookings.Cancel(ctx, a, bookingA.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.confirmed(t, slot.ID))

	bookingC, err := f.usecase.Execute(ctx, &Request{StudentID: c, SlotID: slot.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, bookingC.ConfirmedCount)
	assert.Equal(t, 2, f.confirmed(t, slot.ID))
}

func TestExecute_AlreadyBooked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.slot(t, domain.KindOral, 5)
	student := uuid.New()

	first, err := f.usecase.Execute(ctx, &Request{StudentID: student, SlotID: slot.ID})
	require.NoError(t, err)

	_, err = f.usecase.Execute(ctx, &Request{StudentID: student, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Equal(t, 1, f.confirmed(t, slot.ID))

	// после отмены можно записаться снова, создается новая запись
	_, err = f.bookings.Cancel(ctx, student, first.ID)
	require.NoError(t, err)

	second, err := f.usecase.Execute(ctx, &Request{StudentID: student, SlotID: slot.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestExecute_SlotNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.usecase.Execute(ctx, &Request{StudentID: uuid.New(), SlotID: 42})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	slot := f.slot(t, domain.KindOral, 3)
	require.NoError(t, f.store.Slots().SoftDelete(ctx, slot.ID))

	_, err = f.usecase.Execute(ctx, &Request{StudentID: uuid.New(), SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.usecase.Execute(context.Background(), &Request{SlotID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.usecase.Execute(context.Background(), &Request{StudentID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_WrittenExamIsNeverFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.slot(t, domain.KindWrittenExam, domain.UnlimitedSeatLimit)

	for i := 0; i < domain.UnlimitedSeatLimit+20; i++ {
		resp, err := f.usecase.Execute(ctx, &Request{StudentID: uuid.New(), SlotID: slot.ID})
		require.NoError(t, err)
		assert.Nil(t, resp.SeatLimit)
	}
	assert.Equal(t, domain.UnlimitedSeatLimit+20, f.confirmed(t, slot.ID))
}

func TestExecute_RaceForLastSeat(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		f := newFixture(t)
		slot := f.slot(t, domain.KindOral, 1)

		var (
			wg      sync.WaitGroup
			start   = make(chan struct{})
			results = make([]error, 2)
		)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, results[i] = f.usecase.Execute(ctx, &Request{StudentID: uuid.New(), SlotID: slot.ID})
			}(i)
		}
		close(start)
		wg.Wait()

		var booked, full int
		for _, err := range results {
			switch {
			case err == nil:
				booked++
			case assert.ErrorIs(t, err, ErrSlotFull):
				full++
			}
		}
		assert.Equal(t, 1, booked)
		assert.Equal(t, 1, full)
		assert.Equal(t, 1, f.confirmed(t, slot.ID))
	}
}

func TestExecute_CapacityHoldsUnderConcurrentBookAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const seatLimit = 3
	slot := f.slot(t, domain.KindOther, seatLimit)

	var (
		wg        sync.WaitGroup
		violation = make(chan int, 1)
	)

	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			student := uuid.New()
			for i := 0; i < 25; i++ {
				resp, err := f.usecase.Execute(ctx, &Request{StudentID: student, SlotID: slot.ID})
				if err != nil {
					continue
				}
				if resp.ConfirmedCount > seatLimit {
					select {
					case violation <- resp.ConfirmedCount:
					default:
					}
				}
				_, _ = f.bookings.Cancel(ctx, student, resp.ID)
			}
		}()
	}
	wg.Wait()
	close(violation)

	for count := range violation {
		t.Fatalf("slot had %d confirmed bookings with seat limit %d", count, seatLimit)
	}
	assert.LessOrEqual(t, f.confirmed(t, slot.ID), seatLimit)
	assert.Zero(t, f.confirmed(t, slot.ID))
	assert.Positive(t, f.notifier.count())
}
