package list_class_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

const (
	msgInvalidClassID = "некорректный ID класса"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgInvalidRange   = "некорректный период"
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

// Handle GET /api/v1/classes/{classId}/slots?from=2025-03-10&to=2025-03-24
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	classID, err := handlers.PathUUID(r, "classId")
	if err != nil {
		h.logger.Warn("GET /classes/{classId}/slots - Invalid class ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClassID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /classes/{classId}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()
	result, err := h.service.ListClassSlots(r.Context(), &models.ListSlotsRequest{
		ClassID:  &classID,
		From:     query.Get("from"),
		To:       query.Get("to"),
		ViewerID: userID,
	})
	if err != nil {
		if errors.Is(err, slots.ErrValidation) {
			h.logger.Warn("GET /classes/{classId}/slots - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRange+": "+err.Error())
			return
		}
		h.logger.Error("GET /classes/{classId}/slots - Failed to list slots: class_id=%s, error=%v", classID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /classes/{classId}/slots - Found %d slots: class_id=%s", len(result.Slots), classID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
