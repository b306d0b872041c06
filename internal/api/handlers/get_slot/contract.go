package get_slot

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

type SlotService interface {
	GetSlot(ctx context.Context, viewerID uuid.UUID, slotID int64) (*models.SlotDetailsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
