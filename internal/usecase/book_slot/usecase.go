package book_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
)

// UseCase use case записи студента на слот
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute записывает студента на слот.
// Строка слота блокируется на всю транзакцию, поэтому проверка мест и вставка
// для одного слота выполняются строго по очереди: побеждает тот, кто зафиксировал первым.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: student=%s slot=%d", req.StudentID, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	var (
		slot      *domain.Slot
		booking   *domain.Booking
		confirmed int
	)

	// 2. Все проверки и вставка в одной транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем слот (SELECT ... FOR UPDATE)
		var err error
		slot, err = uc.slotRepo.GetByIDForUpdate(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("BookSlot: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("BookSlot: failed to lock slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
		}

		// 2.2. У студента не должно быть подтвержденной записи на этот слот
		existing, err := uc.bookingRepo.GetConfirmedBySlotAndStudent(txCtx, req.SlotID, req.StudentID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("BookSlot: failed to check existing booking: %v", err)
			return fmt.Errorf("%w: failed to check existing booking: %v", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Warn("BookSlot: student=%s already holds booking id=%d on slot id=%d",
				req.StudentID, existing.ID, req.SlotID)
			return ErrAlreadyBooked
		}

		// 2.3. Проверка мест и вставка под блокировкой; written_exam допускается всегда
		booking, err = uc.bookingRepo.InsertIfCapacityAvailable(txCtx, slot, req.StudentID)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrSlotFull):
				uc.logger.Warn("BookSlot: slot id=%d is full (limit=%d)", req.SlotID, slot.SeatLimit)
				return ErrSlotFull
			case errors.Is(err, bookingRepo.ErrAlreadyBooked):
				uc.logger.Warn("BookSlot: unique index rejected student=%s on slot id=%d", req.StudentID, req.SlotID)
				return ErrAlreadyBooked
			default:
				uc.logger.Error("BookSlot: failed to insert booking: %v", err)
				return fmt.Errorf("%w: failed to insert booking: %v", ErrInternal, err)
			}
		}

		confirmed, err = uc.bookingRepo.CountConfirmed(txCtx, req.SlotID)
		if err != nil {
			uc.logger.Error("BookSlot: failed to count bookings of slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.metrics.ObserveBooking(outcomeOf(err))
		return nil, err
	}

	// 3. Транзакция зафиксирована, уведомление не влияет на результат
	uc.metrics.ObserveBooking(metrics.OutcomeBooked)
	event := domain.NewBookingEvent(domain.EventBookingConfirmed, slot, booking, uc.timeProvider.Now())
	if err := uc.notifier.Notify(ctx, event); err != nil {
		uc.logger.Warn("BookSlot: notification for booking id=%d not sent: %v", booking.ID, err)
	}

	uc.logger.Info("BookSlot: created booking id=%d, slot id=%d now has %d confirmed",
		booking.ID, slot.ID, confirmed)

	resp := &Response{
		ID:             booking.ID,
		SlotID:         booking.SlotID,
		StudentID:      booking.StudentID,
		Status:         string(booking.Status),
		CreatedAt:      booking.CreatedAt,
		ConfirmedCount: confirmed,
	}
	if !slot.IsUnlimited() {
		seatLimit := slot.SeatLimit
		resp.SeatLimit = &seatLimit
	}
	return resp, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrSlotFull):
		return metrics.OutcomeSlotFull
	case errors.Is(err, ErrAlreadyBooked):
		return metrics.OutcomeAlreadyBooked
	default:
		return metrics.OutcomeError
	}
}
