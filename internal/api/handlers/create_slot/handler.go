package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotTeachingDay     = "в выбранную дату нет занятий (воскресенье или праздник)"
	msgInvalidSlot        = "некорректные параметры слота"
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

// Handle POST /api/v1/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.ValidateStruct(req); err != nil {
		h.logger.Warn("POST /slots - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.CreateSlot(r.Context(), req.ToServiceRequest(teacherID))
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDate):
			h.logger.Warn("POST /slots - Not a teaching day: teacher_id=%s, date=%s", teacherID, req.Date)
			handlers.RespondBadRequest(w, msgNotTeachingDay)

		case errors.Is(err, slots.ErrValidation):
			h.logger.Warn("POST /slots - Invalid slot: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidSlot+": "+err.Error())

		default:
			h.logger.Error("POST /slots - Failed to create slot: teacher_id=%s, error=%v", teacherID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots - Slot created successfully: slot_id=%d, teacher_id=%s", result.ID, teacherID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
