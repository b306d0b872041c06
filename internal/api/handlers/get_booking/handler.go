package get_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
)

const (
	msgBadBookingID  = "ID записи должен быть положительным числом"
	msgNoBooking     = "запись на слот не найдена"
	msgNoCaller      = "не передан X-User-ID"
	msgNotYourRecord = "запись видна только студенту и учителю, открывшему слот"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Студент видит свою запись, учитель любую запись на свой слот.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - no caller in context")
		handlers.RespondUnauthorized(w, msgNoCaller)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - bad booking id from %s %s: %v", role, callerID, err)
		handlers.RespondBadRequest(w, msgBadBookingID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), callerID, bookingID)
	switch {
	case err == nil:
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("GET /bookings/%d - no such booking", bookingID)
		handlers.RespondNotFound(w, msgNoBooking)
		return
	case errors.Is(err, bookings.ErrForbidden):
		h.logger.Warn("GET /bookings/%d - %s %s owns neither the booking nor its slot", bookingID, role, callerID)
		handlers.RespondForbidden(w, msgNotYourRecord)
		return
	default:
		h.logger.Error("GET /bookings/%d - lookup failed: %v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings/%d - slot_id=%d status=%s shown to %s %s",
		bookingID, booking.SlotID, booking.Status, role, callerID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
