package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// EventType type of a notification event
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventSlotDeleted      EventType = "slot.deleted"
	EventSlotUpdated      EventType = "slot.updated"
)

// Event is sent to the notification dispatcher after a change has been committed
type Event struct {
	Type       EventType
	SlotID     int64
	BookingID  int64 // 0 для событий слота
	TeacherID  uuid.UUID
	ClassID    uuid.UUID
	Subject    string
	Kind       SlotKind
	Date       time.Time
	StartTime  types.TimeString
	StudentIDs []uuid.UUID // кого уведомить
	OccurredAt time.Time
}

// NewBookingEvent builds an event about a single booking
func NewBookingEvent(t EventType, slot *Slot, booking *Booking, at time.Time) Event {
	e := newSlotEvent(t, slot, at)
	e.BookingID = booking.ID
	e.StudentIDs = []uuid.UUID{booking.StudentID}
	return e
}

// NewSlotEvent builds an event about a slot affecting the given students
func NewSlotEvent(t EventType, slot *Slot, studentIDs []uuid.UUID, at time.Time) Event {
	e := newSlotEvent(t, slot, at)
	e.StudentIDs = studentIDs
	return e
}

func newSlotEvent(t EventType, slot *Slot, at time.Time) Event {
	return Event{
		Type:       t,
		SlotID:     slot.ID,
		TeacherID:  slot.TeacherID,
		ClassID:    slot.ClassID,
		Subject:    slot.Subject,
		Kind:       slot.Kind,
		Date:       slot.Date,
		StartTime:  slot.StartTime,
		OccurredAt: at,
	}
}
