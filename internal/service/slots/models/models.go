package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Request модели

// CreateSlotRequest запрос на создание слота
type CreateSlotRequest struct {
	TeacherID uuid.UUID
	ClassID   uuid.UUID
	Subject   string
	Kind      string
	Date      string  // "2025-03-11"
	StartTime string  // "09:00"
	EndTime   *string // опционально
	SeatLimit *int    // игнорируется для written_exam
	Notes     *string
}

// UpdateSlotRequest запрос на изменение слота, nil поля не меняются
type UpdateSlotRequest struct {
	TeacherID    uuid.UUID
	SlotID       int64
	Subject      *string
	Kind         *string
	Date         *string
	StartTime    *string
	EndTime      *string
	ClearEndTime bool
	SeatLimit    *int
	Notes        *string
	ClearNotes   bool
}

// ListSlotsRequest запрос списка слотов класса или учителя
type ListSlotsRequest struct {
	ClassID   *uuid.UUID
	TeacherID *uuid.UUID
	From      string // пусто - сегодня
	To        string // пусто - From + 14 дней
	ViewerID  uuid.UUID
}

// Response модели

// SlotResponse слот с текущей заполненностью
type SlotResponse struct {
	ID             int64     `json:"id"`
	TeacherID      uuid.UUID `json:"teacherId"`
	ClassID        uuid.UUID `json:"classId"`
	Subject        string    `json:"subject"`
	Kind           string    `json:"kind"`
	Date           string    `json:"date"`
	StartTime      string    `json:"startTime"`
	EndTime        *string   `json:"endTime,omitempty"`
	SeatLimit      *int      `json:"seatLimit,omitempty"` // nil для слотов без лимита
	Unlimited      bool      `json:"unlimited"`
	ConfirmedCount int       `json:"confirmedCount"`
	AvailableSeats *int      `json:"availableSeats,omitempty"`
	IsFull         bool      `json:"isFull"`
	BookedByMe     bool      `json:"bookedByMe"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SlotBookingItem запись студента на слот (видна владельцу слота)
type SlotBookingItem struct {
	ID        int64     `json:"id"`
	StudentID uuid.UUID `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SlotDetailsResponse слот вместе с подтвержденными записями
type SlotDetailsResponse struct {
	SlotResponse
	Bookings []SlotBookingItem `json:"bookings,omitempty"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// DeleteSlotResponse результат удаления слота
type DeleteSlotResponse struct {
	SlotID            int64       `json:"slotId"`
	CancelledBookings int         `json:"cancelledBookings"`
	AffectedStudents  []uuid.UUID `json:"affectedStudents"`
}

// Методы конвертации

// FromDomainSlot конвертирует слот и число подтвержденных записей в DTO
func FromDomainSlot(slot *domain.Slot, confirmed int, bookedByMe bool) SlotResponse {
	availability := domain.SlotAvailability{Slot: slot, ConfirmedCount: confirmed}

	resp := SlotResponse{
		ID:             slot.ID,
		TeacherID:      slot.TeacherID,
		ClassID:        slot.ClassID,
		Subject:        slot.Subject,
		Kind:           string(slot.Kind),
		Date:           slot.Date.Format(domain.DateFormat),
		StartTime:      slot.StartTime.String(),
		Unlimited:      slot.IsUnlimited(),
		ConfirmedCount: confirmed,
		IsFull:         availability.IsFull(),
		BookedByMe:     bookedByMe,
		Notes:          slot.Notes,
		CreatedAt:      slot.CreatedAt,
		UpdatedAt:      slot.UpdatedAt,
	}

	if slot.EndTime != nil {
		end := slot.EndTime.String()
		resp.EndTime = &end
	}

	if !slot.IsUnlimited() {
		seatLimit := slot.SeatLimit
		available := availability.AvailableSeats()
		resp.SeatLimit = &seatLimit
		resp.AvailableSeats = &available
	}

	return resp
}
