package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetConfirmedBySlotAndStudent(ctx context.Context, slotID int64, studentID uuid.UUID) (*domain.Booking, error)
	ListBySlot(ctx context.Context, slotID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	ListByStudent(ctx context.Context, filter domain.StudentBookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason domain.CancelReason) (bool, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	GetByIDIncludeDeleted(ctx context.Context, id int64) (*domain.Slot, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправка событий после фиксации транзакции
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// Metrics счетчик исходов бронирования
type Metrics interface {
	ObserveBooking(outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
