package notifier

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// LogNotifier только пишет события в лог, используется когда Redis выключен
type LogNotifier struct {
	log Logger
}

func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event domain.Event) error {
	n.log.Info("Notify: %s slot_id=%d booking_id=%d students=%d",
		event.Type, event.SlotID, event.BookingID, len(event.StudentIDs))
	return nil
}
