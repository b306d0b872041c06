package book_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	bookSlot "github.com/m04kA/SMC-SlotBooking/internal/usecase/book_slot"
)

const (
	msgInvalidSlotID  = "некорректный ID слота"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgSlotNotFound   = "слот не найден"
	msgSlotFull       = "свободных мест нет"
	msgAlreadyBooked  = "вы уже записаны на этот слот"
	msgInvalidRequest = "некорректный запрос"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/bookings - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &bookSlot.Request{StudentID: studentID, SlotID: slotID})
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/bookings - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, bookSlot.ErrSlotFull):
			h.logger.Warn("POST /slots/{id}/bookings - Slot full: slot_id=%d, student_id=%s", slotID, studentID)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, bookSlot.ErrAlreadyBooked):
			h.logger.Warn("POST /slots/{id}/bookings - Already booked: slot_id=%d, student_id=%s", slotID, studentID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, bookSlot.ErrInvalidInput):
			h.logger.Warn("POST /slots/{id}/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("POST /slots/{id}/bookings - Failed to book slot: slot_id=%d, student_id=%s, error=%v",
				slotID, studentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/bookings - Booking created: booking_id=%d, slot_id=%d, student_id=%s",
		result.ID, slotID, studentID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
