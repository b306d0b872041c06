package notifier

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Message JSON сообщение, публикуемое в канал уведомлений
type Message struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	SlotID     int64       `json:"slot_id"`
	BookingID  *int64      `json:"booking_id,omitempty"`
	TeacherID  uuid.UUID   `json:"teacher_id"`
	ClassID    uuid.UUID   `json:"class_id"`
	Subject    string      `json:"subject"`
	Kind       string      `json:"kind"`
	Date       string      `json:"date"`       // YYYY-MM-DD
	StartTime  string      `json:"start_time"` // HH:MM
	StudentIDs []uuid.UUID `json:"student_ids"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewMessage преобразует доменное событие в сообщение
func NewMessage(event domain.Event) Message {
	msg := Message{
		ID:         uuid.New(),
		Type:       string(event.Type),
		SlotID:     event.SlotID,
		TeacherID:  event.TeacherID,
		ClassID:    event.ClassID,
		Subject:    event.Subject,
		Kind:       string(event.Kind),
		Date:       event.Date.Format(domain.DateFormat),
		StartTime:  event.StartTime.String(),
		StudentIDs: event.StudentIDs,
		OccurredAt: event.OccurredAt,
	}
	if event.BookingID != 0 {
		id := event.BookingID
		msg.BookingID = &id
	}
	if msg.StudentIDs == nil {
		msg.StudentIDs = []uuid.UUID{}
	}
	return msg
}
