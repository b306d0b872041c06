package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/ptr"
)

// Service управляет жизненным циклом слотов: создание, изменение, удаление с отменой записей
type Service struct {
	slotRepo    SlotRepository
	bookingRepo BookingRepository
	txManager   TransactionManager
	notifier    Notifier
	metrics     Metrics
	logger      Logger
	now         func() time.Time
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		txManager:   txManager,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateSlot создает слот после проверки учебного дня и полей
func (s *Service) CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: teacher=%s class=%s kind=%s date=%s start=%s",
		req.TeacherID, req.ClassID, req.Kind, req.Date, req.StartTime)

	if req.TeacherID == uuid.Nil || req.ClassID == uuid.Nil {
		return nil, fmt.Errorf("%w: teacherId and classId are required", ErrValidation)
	}

	slot, err := slotFromCreateRequest(req)
	if err != nil {
		s.logger.Warn("CreateSlot: invalid request: %v", err)
		return nil, err
	}
	if err := validateSlot(slot); err != nil {
		s.logger.Warn("CreateSlot: validation failed: %v", err)
		return nil, err
	}

	created, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, slotRepo.ErrConstraint) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		s.logger.Error("CreateSlot: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateSlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateSlot: created slot id=%d", created.ID)
	resp := models.FromDomainSlot(created, 0, false)
	return &resp, nil
}

// EditSlot применяет изменения к слоту владельца.
// Все проверки создания повторяются для итогового состояния.
// Существующие записи сохраняются, даже если новый лимит меньше числа подтвержденных.
func (s *Service) EditSlot(ctx context.Context, req *models.UpdateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("EditSlot: slot id=%d by teacher=%s", req.SlotID, req.TeacherID)

	var (
		patch      domain.SlotPatch
		updated    *domain.Slot
		confirmed  int
		studentIDs []uuid.UUID
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.lockOwnedSlot(txCtx, "EditSlot", req.SlotID, req.TeacherID)
		if err != nil {
			return err
		}

		patch, err = patchFromUpdateRequest(req)
		if err != nil {
			s.logger.Warn("EditSlot: invalid request for slot id=%d: %v", req.SlotID, err)
			return err
		}

		// у written_exam хранится служебный лимит, он не должен стать реальным
		if current.IsUnlimited() && patch.Kind != nil && !patch.Kind.IsUnlimited() && patch.SeatLimit == nil {
			s.logger.Warn("EditSlot: slot id=%d changes kind to %s without seatLimit", req.SlotID, *patch.Kind)
			return fmt.Errorf("%w: seatLimit is required when changing kind from %s to %s",
				ErrValidation, current.Kind, *patch.Kind)
		}

		if patch.IsEmpty() {
			updated = current
		} else {
			merged := patch.Apply(current)
			if err := validateSlot(merged); err != nil {
				s.logger.Warn("EditSlot: validation failed for slot id=%d: %v", req.SlotID, err)
				return err
			}

			updated, err = s.slotRepo.Update(txCtx, merged)
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotNotFound) {
					return ErrSlotNotFound
				}
				if errors.Is(err, slotRepo.ErrConstraint) {
					return fmt.Errorf("%w: %v", ErrValidation, err)
				}
				s.logger.Error("EditSlot: failed to update slot id=%d: %v", req.SlotID, err)
				return fmt.Errorf("%w: EditSlot - update: %v", ErrInternal, err)
			}
		}

		bookings, err := s.bookingRepo.ListBySlot(txCtx, req.SlotID, ptr.Ptr(domain.StatusConfirmed))
		if err != nil {
			s.logger.Error("EditSlot: failed to list bookings of slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: EditSlot - list bookings: %v", ErrInternal, err)
		}
		confirmed = len(bookings)
		studentIDs = studentsOf(bookings)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() && len(studentIDs) > 0 {
		s.notify(ctx, domain.NewSlotEvent(domain.EventSlotUpdated, updated, studentIDs, s.now()))
	}

	s.logger.Info("EditSlot: slot id=%d updated, confirmed=%d", updated.ID, confirmed)
	resp := models.FromDomainSlot(updated, confirmed, false)
	return &resp, nil
}

// DeleteSlot удаляет слот и в той же транзакции отменяет все его подтвержденные записи
func (s *Service) DeleteSlot(ctx context.Context, teacherID uuid.UUID, slotID int64) (*models.DeleteSlotResponse, error) {
	s.logger.Info("DeleteSlot: slot id=%d by teacher=%s", slotID, teacherID)

	var (
		deleted    *domain.Slot
		studentIDs []uuid.UUID
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err := s.lockOwnedSlot(txCtx, "DeleteSlot", slotID, teacherID)
		if err != nil {
			return err
		}

		if err := s.slotRepo.SoftDelete(txCtx, slotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			s.logger.Error("DeleteSlot: failed to delete slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: DeleteSlot - soft delete: %v", ErrInternal, err)
		}

		studentIDs, err = s.bookingRepo.CancelAllBySlot(txCtx, slotID, domain.CancelReasonSlotDeleted)
		if err != nil {
			s.logger.Error("DeleteSlot: failed to cancel bookings of slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: DeleteSlot - cancel bookings: %v", ErrInternal, err)
		}

		deleted = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	for range studentIDs {
		s.metrics.ObserveBooking(metrics.OutcomeSlotDeleted)
	}
	s.notify(ctx, domain.NewSlotEvent(domain.EventSlotDeleted, deleted, studentIDs, s.now()))

	s.logger.Info("DeleteSlot: slot id=%d deleted, cancelled %d bookings", slotID, len(studentIDs))
	return &models.DeleteSlotResponse{
		SlotID:            slotID,
		CancelledBookings: len(studentIDs),
		AffectedStudents:  studentIDs,
	}, nil
}

// GetSlot возвращает слот с числом подтвержденных записей.
// Владелец слота дополнительно видит список записавшихся студентов.
func (s *Service) GetSlot(ctx context.Context, viewerID uuid.UUID, slotID int64) (*models.SlotDetailsResponse, error) {
	s.logger.Info("GetSlot: slot id=%d for user=%s", slotID, viewerID)

	var resp models.SlotDetailsResponse

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Warn("GetSlot: slot id=%d not found", slotID)
				return ErrSlotNotFound
			}
			s.logger.Error("GetSlot: repository error for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: GetSlot - get slot: %v", ErrInternal, err)
		}

		bookings, err := s.bookingRepo.ListBySlot(txCtx, slotID, ptr.Ptr(domain.StatusConfirmed))
		if err != nil {
			s.logger.Error("GetSlot: failed to list bookings of slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: GetSlot - list bookings: %v", ErrInternal, err)
		}

		bookedByMe := false
		for _, b := range bookings {
			if b.IsOwnedBy(viewerID) {
				bookedByMe = true
				break
			}
		}

		resp.SlotResponse = models.FromDomainSlot(slot, len(bookings), bookedByMe)
		if slot.IsOwnedBy(viewerID) {
			resp.Bookings = make([]models.SlotBookingItem, 0, len(bookings))
			for _, b := range bookings {
				resp.Bookings = append(resp.Bookings, models.SlotBookingItem{
					ID:        b.ID,
					StudentID: b.StudentID,
					CreatedAt: b.CreatedAt,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// ListClassSlots слоты класса за период
func (s *Service) ListClassSlots(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	if req.ClassID == nil {
		return nil, fmt.Errorf("%w: classId is required", ErrValidation)
	}
	s.logger.Info("ListClassSlots: class=%s from=%q to=%q", *req.ClassID, req.From, req.To)
	return s.list(ctx, "ListClassSlots", req, domain.SlotFilter{ClassID: req.ClassID})
}

// ListTeacherSlots слоты учителя за период
func (s *Service) ListTeacherSlots(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	if req.TeacherID == nil {
		return nil, fmt.Errorf("%w: teacherId is required", ErrValidation)
	}
	s.logger.Info("ListTeacherSlots: teacher=%s from=%q to=%q", *req.TeacherID, req.From, req.To)
	return s.list(ctx, "ListTeacherSlots", req, domain.SlotFilter{TeacherID: req.TeacherID})
}

func (s *Service) list(ctx context.Context, op string, req *models.ListSlotsRequest, filter domain.SlotFilter) (*models.SlotListResponse, error) {
	from, to, err := parseRange(req.From, req.To, s.now())
	if err != nil {
		s.logger.Warn("%s: invalid range: %v", op, err)
		return nil, err
	}
	filter.From = from
	filter.To = to

	resp := &models.SlotListResponse{Slots: []models.SlotResponse{}}

	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		slots, err := s.slotRepo.List(txCtx, filter)
		if err != nil {
			s.logger.Error("%s: failed to list slots: %v", op, err)
			return fmt.Errorf("%w: %s - list slots: %v", ErrInternal, op, err)
		}
		if len(slots) == 0 {
			return nil
		}

		ids := make([]int64, len(slots))
		for i, slot := range slots {
			ids[i] = slot.ID
		}
		counts, err := s.bookingRepo.CountConfirmedBySlots(txCtx, ids)
		if err != nil {
			s.logger.Error("%s: failed to count bookings: %v", op, err)
			return fmt.Errorf("%w: %s - count bookings: %v", ErrInternal, op, err)
		}

		booked := make(map[int64]bool)
		if req.ViewerID != uuid.Nil {
			mine, err := s.bookingRepo.ListByStudent(txCtx, domain.StudentBookingsFilter{
				StudentID: req.ViewerID,
				Status:    ptr.Ptr(domain.StatusConfirmed),
				From:      &from,
				To:        &to,
			})
			if err != nil {
				s.logger.Error("%s: failed to list viewer bookings: %v", op, err)
				return fmt.Errorf("%w: %s - list viewer bookings: %v", ErrInternal, op, err)
			}
			for _, b := range mine {
				booked[b.SlotID] = true
			}
		}

		for _, slot := range slots {
			resp.Slots = append(resp.Slots, models.FromDomainSlot(slot, counts[slot.ID], booked[slot.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: found %d slots between %s and %s", op, len(resp.Slots),
		from.Format(domain.DateFormat), to.Format(domain.DateFormat))
	return resp, nil
}

// lockOwnedSlot блокирует строку слота и проверяет владельца
func (s *Service) lockOwnedSlot(txCtx context.Context, op string, slotID int64, teacherID uuid.UUID) (*domain.Slot, error) {
	slot, err := s.slotRepo.GetByIDForUpdate(txCtx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found", op, slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: failed to lock slot id=%d: %v", op, slotID, err)
		return nil, fmt.Errorf("%w: %s - lock slot: %v", ErrInternal, op, err)
	}

	if !slot.IsOwnedBy(teacherID) {
		s.logger.Warn("%s: teacher=%s is not the owner of slot id=%d", op, teacherID, slotID)
		return nil, ErrForbidden
	}

	return slot, nil
}

func (s *Service) notify(ctx context.Context, event domain.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("notify: %s for slot id=%d not sent: %v", event.Type, event.SlotID, err)
	}
}

func studentsOf(bookings []*domain.Booking) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.StudentID)
	}
	return ids
}

