package delete_slot

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

type SlotService interface {
	DeleteSlot(ctx context.Context, teacherID uuid.UUID, slotID int64) (*models.DeleteSlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
