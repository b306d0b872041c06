package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/ptr"
)

// Service сервис для работы с существующими бронированиями: отмена, просмотр, выгрузка
type Service struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	txManager   TransactionManager
	notifier    Notifier
	metrics     Metrics
	logger      Logger
	now         func() time.Time
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		txManager:   txManager,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Cancel отменяет бронирование студента.
// Повторная отмена уже отмененного бронирования успешна и ничего не меняет.
func (s *Service) Cancel(ctx context.Context, studentID uuid.UUID, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by student=%s", bookingID, studentID)

	var (
		booking   *domain.Booking
		slot      *domain.Slot
		cancelled bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.getBooking(txCtx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		if !booking.IsOwnedBy(studentID) {
			s.logger.Warn("Cancel: student=%s is not the owner of booking id=%d", studentID, bookingID)
			return ErrForbidden
		}

		if !booking.IsCancelled() {
			cancelled, err = s.bookingRepo.Cancel(txCtx, bookingID, domain.CancelReasonStudent)
			if err != nil {
				s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
				return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
			}

			// перечитываем, чтобы вернуть фактическое состояние после отмены
			booking, err = s.getBooking(txCtx, "Cancel", bookingID)
			if err != nil {
				return err
			}
		}

		slot, err = s.slotRepo.GetByIDIncludeDeleted(txCtx, booking.SlotID)
		if err != nil {
			s.logger.Error("Cancel: failed to get slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: Cancel - get slot: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Slot = slot
	if !cancelled {
		s.logger.Info("Cancel: booking id=%d was already cancelled", bookingID)
		return models.FromDomainBooking(booking), nil
	}

	s.metrics.ObserveBooking(metrics.OutcomeCancelled)
	if err := s.notifier.Notify(ctx, domain.NewBookingEvent(domain.EventBookingCancelled, slot, booking, s.now())); err != nil {
		s.logger.Warn("Cancel: notification for booking id=%d not sent: %v", bookingID, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// GetByID возвращает бронирование вместе со слотом.
// Видно студенту-владельцу и учителю, которому принадлежит слот.
func (s *Service) GetByID(ctx context.Context, userID uuid.UUID, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%s", bookingID, userID)

	var booking *domain.Booking

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.getBooking(txCtx, "GetByID", bookingID)
		if err != nil {
			return err
		}

		slot, err := s.slotRepo.GetByIDIncludeDeleted(txCtx, booking.SlotID)
		if err != nil {
			s.logger.Error("GetByID: failed to get slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: GetByID - get slot: %v", ErrInternal, err)
		}

		if !booking.IsOwnedBy(userID) && !slot.IsOwnedBy(userID) {
			s.logger.Warn("GetByID: access denied for user=%s to booking id=%d", userID, bookingID)
			return ErrForbidden
		}

		booking.Slot = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// ListStudentBookings история бронирований студента, студент видит только свои
func (s *Service) ListStudentBookings(ctx context.Context, req *models.ListStudentBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListStudentBookings: student=%s status=%q from=%q to=%q", req.StudentID, req.Status, req.From, req.To)

	if req.UserID != req.StudentID {
		s.logger.Warn("ListStudentBookings: user=%s requested bookings of student=%s", req.UserID, req.StudentID)
		return nil, ErrForbidden
	}

	filter, err := toStudentFilter(req)
	if err != nil {
		s.logger.Warn("ListStudentBookings: invalid filter: %v", err)
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByStudent(ctx, filter)
	if err != nil {
		s.logger.Error("ListStudentBookings: repository error for student=%s: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: ListStudentBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListStudentBookings: found %d bookings for student=%s", len(bookings), req.StudentID)
	return models.FromDomainBookings(bookings), nil
}

// ListSlotBookings подтвержденные записи на слот, доступно только владельцу слота
func (s *Service) ListSlotBookings(ctx context.Context, teacherID uuid.UUID, slotID int64) (*models.BookingListResponse, error) {
	s.logger.Info("ListSlotBookings: slot id=%d for teacher=%s", slotID, teacherID)

	bookings, _, err := s.ownedSlotBookings(ctx, "ListSlotBookings", teacherID, slotID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBookings(bookings), nil
}

// HasBooked проверяет, есть ли у студента подтвержденная запись на слот
func (s *Service) HasBooked(ctx context.Context, studentID uuid.UUID, slotID int64) (*models.HasBookedResponse, error) {
	resp := &models.HasBookedResponse{SlotID: slotID}

	booking, err := s.bookingRepo.GetConfirmedBySlotAndStudent(ctx, slotID, studentID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return resp, nil
		}
		s.logger.Error("HasBooked: repository error for slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: HasBooked - repository error: %v", ErrInternal, err)
	}

	resp.Booked = true
	resp.BookingID = ptr.Ptr(booking.ID)
	return resp, nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - get booking: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// ownedSlotBookings возвращает слот и его подтвержденные записи, проверяя владельца
func (s *Service) ownedSlotBookings(ctx context.Context, op string, teacherID uuid.UUID, slotID int64) ([]*domain.Booking, *domain.Slot, error) {
	var (
		bookings []*domain.Booking
		slot     *domain.Slot
	)

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		slot, err = s.slotRepo.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Warn("%s: slot id=%d not found", op, slotID)
				return ErrSlotNotFound
			}
			s.logger.Error("%s: failed to get slot id=%d: %v", op, slotID, err)
			return fmt.Errorf("%w: %s - get slot: %v", ErrInternal, op, err)
		}

		if !slot.IsOwnedBy(teacherID) {
			s.logger.Warn("%s: teacher=%s is not the owner of slot id=%d", op, teacherID, slotID)
			return ErrForbidden
		}

		bookings, err = s.bookingRepo.ListBySlot(txCtx, slotID, ptr.Ptr(domain.StatusConfirmed))
		if err != nil {
			s.logger.Error("%s: failed to list bookings of slot id=%d: %v", op, slotID, err)
			return fmt.Errorf("%w: %s - list bookings: %v", ErrInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return bookings, slot, nil
}

func toStudentFilter(req *models.ListStudentBookingsRequest) (domain.StudentBookingsFilter, error) {
	filter := domain.StudentBookingsFilter{StudentID: req.StudentID}

	if req.Status != "" {
		status := domain.BookingStatus(strings.ToLower(req.Status))
		if !status.IsValid() {
			return filter, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
		}
		filter.Status = &status
	}

	for _, bound := range []struct {
		value string
		dst   **time.Time
	}{
		{req.From, &filter.From},
		{req.To, &filter.To},
	} {
		if bound.value == "" {
			continue
		}
		d, err := time.Parse(domain.DateFormat, bound.value)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, bound.value)
		}
		*bound.dst = &d
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}

	return filter, nil
}
