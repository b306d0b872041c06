package list_student_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

const (
	msgInvalidStudentID = "некорректный ID студента"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "можно просматривать только свои бронирования"
	msgInvalidFilter    = "некорректные параметры фильтра"
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

// Handle GET /api/v1/students/{studentId}/bookings?status=confirmed&from=2025-03-01&to=2025-03-31
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, err := handlers.PathUUID(r, "studentId")
	if err != nil {
		h.logger.Warn("GET /students/{studentId}/bookings - Invalid student ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStudentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /students/{studentId}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()
	result, err := h.service.ListStudentBookings(r.Context(), &models.ListStudentBookingsRequest{
		UserID:    userID,
		StudentID: studentID,
		Status:    query.Get("status"),
		From:      query.Get("from"),
		To:        query.Get("to"),
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrForbidden):
			h.logger.Warn("GET /students/{studentId}/bookings - Access denied: student_id=%s, user_id=%s",
				studentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrValidation):
			h.logger.Warn("GET /students/{studentId}/bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter+": "+err.Error())

		default:
			h.logger.Error("GET /students/{studentId}/bookings - Failed to get bookings: student_id=%s, error=%v",
				studentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /students/{studentId}/bookings - Found %d bookings: student_id=%s",
		len(result.Bookings), studentID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
