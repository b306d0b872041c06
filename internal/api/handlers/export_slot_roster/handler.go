package export_slot_roster

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	msgInvalidSlotID = "некорректный ID слота"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "слот не найден"
	msgForbidden     = "слот принадлежит другому учителю"
)

type Handler struct {
	exporter RosterExporter
	logger   Logger
}

func NewHandler(exporter RosterExporter, logger Logger) *Handler {
	return &Handler{
		exporter: exporter,
		logger:   logger,
	}
}

// Handle GET /api/v1/slots/{slotId}/roster.xlsx
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("GET /slots/{id}/roster.xlsx - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	teacherID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /slots/{id}/roster.xlsx - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	roster, err := h.exporter.ExportSlotRoster(r.Context(), teacherID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrSlotNotFound):
			h.logger.Warn("GET /slots/{id}/roster.xlsx - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrForbidden):
			h.logger.Warn("GET /slots/{id}/roster.xlsx - Access denied: slot_id=%d, teacher_id=%s", slotID, teacherID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /slots/{id}/roster.xlsx - Failed to export roster: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/{id}/roster.xlsx - Roster exported: slot_id=%d, bytes=%d", slotID, len(roster.Content))
	handlers.RespondFile(w, xlsxContentType, roster.FileName, roster.Content)
}
