package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid returns true for known statuses
func (s BookingStatus) IsValid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CancelReason who or what cancelled a booking
type CancelReason string

const (
	CancelReasonStudent     CancelReason = "student"
	CancelReasonSlotDeleted CancelReason = "slot_deleted"
)

// Booking represents a student's reservation against a slot
type Booking struct {
	ID        int64
	SlotID    int64
	StudentID uuid.UUID
	Status    BookingStatus

	CancelReason *CancelReason
	CancelledAt  *time.Time

	CreatedAt time.Time

	// Slot заполняется только в списках бронирований студента
	Slot *Slot
}

// IsConfirmed returns true if the booking holds a seat
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsOwnedBy returns true if the booking belongs to studentID
func (b *Booking) IsOwnedBy(studentID uuid.UUID) bool {
	return b.StudentID == studentID
}

// Clone returns a deep copy
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.CancelReason != nil {
		reason := *b.CancelReason
		c.CancelReason = &reason
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	c.Slot = b.Slot.Clone()
	return &c
}

// StudentBookingsFilter фильтр бронирований студента
type StudentBookingsFilter struct {
	StudentID uuid.UUID
	Status    *BookingStatus // nil - все статусы
	From      *time.Time     // по дате слота, включительно
	To        *time.Time
}
