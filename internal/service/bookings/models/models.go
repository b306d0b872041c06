package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Request модели

// ListStudentBookingsRequest запрос истории бронирований студента
type ListStudentBookingsRequest struct {
	UserID    uuid.UUID
	StudentID uuid.UUID
	Status    string // confirmed | cancelled, пусто - все
	From      string // "2025-03-01", опционально
	To        string
}

// Response модели

// SlotSummary краткие данные слота внутри бронирования
type SlotSummary struct {
	ID        int64     `json:"id"`
	TeacherID uuid.UUID `json:"teacherId"`
	ClassID   uuid.UUID `json:"classId"`
	Subject   string    `json:"subject"`
	Kind      string    `json:"kind"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   *string   `json:"endTime,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID           int64        `json:"id"`
	SlotID       int64        `json:"slotId"`
	StudentID    uuid.UUID    `json:"studentId"`
	Status       string       `json:"status"`
	CancelReason *string      `json:"cancelReason,omitempty"`
	CancelledAt  *time.Time   `json:"cancelledAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	Slot         *SlotSummary `json:"slot,omitempty"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// HasBookedResponse есть ли у студента подтвержденная запись на слот
type HasBookedResponse struct {
	SlotID    int64  `json:"slotId"`
	Booked    bool   `json:"booked"`
	BookingID *int64 `json:"bookingId,omitempty"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(booking *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:          booking.ID,
		SlotID:      booking.SlotID,
		StudentID:   booking.StudentID,
		Status:      string(booking.Status),
		CancelledAt: booking.CancelledAt,
		CreatedAt:   booking.CreatedAt,
	}

	if booking.CancelReason != nil {
		reason := string(*booking.CancelReason)
		resp.CancelReason = &reason
	}

	if booking.Slot != nil {
		resp.Slot = FromDomainSlot(booking.Slot)
	}

	return resp
}

// FromDomainSlot конвертирует слот в краткое представление
func FromDomainSlot(slot *domain.Slot) *SlotSummary {
	summary := &SlotSummary{
		ID:        slot.ID,
		TeacherID: slot.TeacherID,
		ClassID:   slot.ClassID,
		Subject:   slot.Subject,
		Kind:      string(slot.Kind),
		Date:      slot.Date.Format(domain.DateFormat),
		StartTime: slot.StartTime.String(),
		Deleted:   slot.IsDeleted(),
	}
	if slot.EndTime != nil {
		end := slot.EndTime.String()
		summary.EndTime = &end
	}
	return summary
}

// FromDomainBookings конвертирует список бронирований
func FromDomainBookings(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{Bookings: make([]BookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}
