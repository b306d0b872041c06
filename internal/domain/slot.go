package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// SlotKind kind of a bookable slot
type SlotKind string

const (
	KindOral        SlotKind = "oral"
	KindWrittenExam SlotKind = "written_exam"
	KindOther       SlotKind = "other"
)

// IsValid returns true for known kinds
func (k SlotKind) IsValid() bool {
	switch k {
	case KindOral, KindWrittenExam, KindOther:
		return true
	}
	return false
}

// IsUnlimited returns true for kinds that accept the whole class without a seat ceiling
func (k SlotKind) IsUnlimited() bool {
	return k == KindWrittenExam
}

// Slot represents a teacher-published bookable time window
type Slot struct {
	ID        int64
	TeacherID uuid.UUID
	ClassID   uuid.UUID
	Subject   string
	Kind      SlotKind
	Date      time.Time // только дата, время суток в StartTime/EndTime
	StartTime types.TimeString
	EndTime   *types.TimeString
	SeatLimit int
	Notes     *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsUnlimited returns true if the slot never rejects bookings for capacity
func (s *Slot) IsUnlimited() bool {
	return s.Kind.IsUnlimited()
}

// IsOwnedBy returns true if teacherID published the slot
func (s *Slot) IsOwnedBy(teacherID uuid.UUID) bool {
	return s.TeacherID == teacherID
}

// IsDeleted returns true if the slot was removed by its teacher
func (s *Slot) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Clone returns a deep copy
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	if s.Notes != nil {
		notes := *s.Notes
		c.Notes = &notes
	}
	if s.DeletedAt != nil {
		deletedAt := *s.DeletedAt
		c.DeletedAt = &deletedAt
	}
	return &c
}

// SlotAvailability slot together with its current confirmed booking count
type SlotAvailability struct {
	Slot           *Slot
	ConfirmedCount int
}

// IsFull returns true if no more bookings can be admitted
func (a *SlotAvailability) IsFull() bool {
	if a.Slot.IsUnlimited() {
		return false
	}
	return a.ConfirmedCount >= a.Slot.SeatLimit
}

// AvailableSeats returns the number of free seats, UnlimitedSeats for unlimited kinds
func (a *SlotAvailability) AvailableSeats() int {
	if a.Slot.IsUnlimited() {
		return UnlimitedSeats
	}
	free := a.Slot.SeatLimit - a.ConfirmedCount
	if free < 0 {
		// лимит уменьшили ниже числа уже подтвержденных записей
		return 0
	}
	return free
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (a *SlotAvailability) OccupancyRate() float64 {
	if a.Slot.IsUnlimited() || a.Slot.SeatLimit <= 0 {
		return 0
	}
	rate := float64(a.ConfirmedCount) / float64(a.Slot.SeatLimit) * 100
	if rate > 100 {
		return 100
	}
	return rate
}

// SlotPatch partial update of a slot; nil fields are left unchanged
type SlotPatch struct {
	Subject      *string
	Kind         *SlotKind
	Date         *time.Time
	StartTime    *types.TimeString
	EndTime      *types.TimeString
	ClearEndTime bool
	SeatLimit    *int
	Notes        *string
	ClearNotes   bool
}

// IsEmpty returns true if the patch changes nothing
func (p SlotPatch) IsEmpty() bool {
	return p.Subject == nil && p.Kind == nil && p.Date == nil && p.StartTime == nil &&
		p.EndTime == nil && !p.ClearEndTime && p.SeatLimit == nil && p.Notes == nil && !p.ClearNotes
}

// Apply returns a copy of s with the patch merged in
func (p SlotPatch) Apply(s *Slot) *Slot {
	merged := s.Clone()
	if p.Subject != nil {
		merged.Subject = *p.Subject
	}
	if p.Kind != nil {
		merged.Kind = *p.Kind
	}
	if p.Date != nil {
		merged.Date = *p.Date
	}
	if p.StartTime != nil {
		merged.StartTime = *p.StartTime
	}
	if p.ClearEndTime {
		merged.EndTime = nil
	} else if p.EndTime != nil {
		end := *p.EndTime
		merged.EndTime = &end
	}
	if p.SeatLimit != nil {
		merged.SeatLimit = *p.SeatLimit
	}
	if p.ClearNotes {
		merged.Notes = nil
	} else if p.Notes != nil {
		notes := *p.Notes
		merged.Notes = &notes
	}
	return merged
}

// SlotFilter фильтр списка слотов; хотя бы один из ClassID/TeacherID обязателен
type SlotFilter struct {
	ClassID   *uuid.UUID
	TeacherID *uuid.UUID
	From      time.Time // включительно
	To        time.Time // включительно
}
