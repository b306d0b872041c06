package list_class_slots

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

type SlotService interface {
	ListClassSlots(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
