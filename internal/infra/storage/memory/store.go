// Package memory хранилище слотов и бронирований в памяти процесса.
// Используется при database.driver = "memory" и как бэкенд тестов сервисов.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Store общее состояние для SlotRepository и BookingRepository.
// Транзакция держит эксклюзивную блокировку, работает с копией состояния
// и при успехе подменяет им зафиксированное состояние.
type Store struct {
	mutex sync.RWMutex
	state *state
	now   func() time.Time
}

type state struct {
	slots         map[int64]*domain.Slot
	bookings      map[int64]*domain.Booking
	nextSlotID    int64
	nextBookingID int64
}

type txKey struct{}

type txState struct {
	store *Store
	state *state
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		state: &state{
			slots:    make(map[int64]*domain.Slot),
			bookings: make(map[int64]*domain.Booking),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Slots репозиторий слотов поверх хранилища
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// Bookings репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

// Do выполняет fn в транзакции. Вложенный вызов присоединяется к внешней
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := s.txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txState{store: s, state: s.state.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// DoSerializable транзакции хранилища и так выполняются строго последовательно
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly выполняет fn на снимке состояния, изменения отбрасываются
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := s.txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.mutex.RLock()
	snapshot := s.state.clone()
	s.mutex.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, &txState{store: s, state: snapshot}))
}

// InTransaction true, если ctx несет транзакцию этого хранилища
func (s *Store) InTransaction(ctx context.Context) bool {
	_, ok := s.txFromContext(ctx)
	return ok
}

func (s *Store) txFromContext(ctx context.Context) (*txState, bool) {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok || tx.store != s {
		return nil, false
	}
	return tx, true
}

// read выполняет fn на состоянии транзакции или на зафиксированном состоянии под RLock
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if tx, ok := s.txFromContext(ctx); ok {
		return fn(tx.state)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return fn(s.state)
}

// write вне транзакции выполняется как транзакция из одной операции
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.Do(ctx, func(ctx context.Context) error {
		tx, _ := s.txFromContext(ctx)
		return fn(tx.state)
	})
}

func (st *state) clone() *state {
	c := &state{
		slots:         make(map[int64]*domain.Slot, len(st.slots)),
		bookings:      make(map[int64]*domain.Booking, len(st.bookings)),
		nextSlotID:    st.nextSlotID,
		nextBookingID: st.nextBookingID,
	}
	for id, slot := range st.slots {
		c.slots[id] = slot.Clone()
	}
	for id, booking := range st.bookings {
		c.bookings[id] = booking.Clone()
	}
	return c
}

func (st *state) confirmedCount(slotID int64) int {
	count := 0
	for _, b := range st.bookings {
		if b.SlotID == slotID && b.IsConfirmed() {
			count++
		}
	}
	return count
}
