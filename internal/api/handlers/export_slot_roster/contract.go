package export_slot_roster

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
)

type RosterExporter interface {
	ExportSlotRoster(ctx context.Context, teacherID uuid.UUID, slotID int64) (*bookings.RosterFile, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
