package list_teacher_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

const (
	msgInvalidTeacherID = "некорректный ID учителя"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidRange     = "некорректный период"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/slots?from=2025-03-10&to=2025-03-24
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID, err := handlers.PathUUID(r, "teacherId")
	if err != nil {
		h.logger.Warn("GET /teachers/{teacherId}/slots - Invalid teacher ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /teachers/{teacherId}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()
	result, err := h.service.ListTeacherSlots(r.Context(), &models.ListSlotsRequest{
		TeacherID: &teacherID,
		From:      query.Get("from"),
		To:        query.Get("to"),
		ViewerID:  userID,
	})
	if err != nil {
		if errors.Is(err, slots.ErrValidation) {
			h.logger.Warn("GET /teachers/{teacherId}/slots - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRange+": "+err.Error())
			return
		}
		h.logger.Error("GET /teachers/{teacherId}/slots - Failed to list slots: teacher_id=%s, error=%v", teacherID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /teachers/{teacherId}/slots - Found %d slots: teacher_id=%s", len(result.Slots), teacherID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
