package slots

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error)
	Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountConfirmedBySlots(ctx context.Context, slotIDs []int64) (map[int64]int, error)
	ListBySlot(ctx context.Context, slotID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	ListByStudent(ctx context.Context, filter domain.StudentBookingsFilter) ([]*domain.Booking, error)
	CancelAllBySlot(ctx context.Context, slotID int64, reason domain.CancelReason) ([]uuid.UUID, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier диспетчер уведомлений, вызывается только после фиксации транзакции
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// Metrics счетчики исходов
type Metrics interface {
	ObserveBooking(outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
