package book_slot

import (
	"time"

	"github.com/google/uuid"

	bookSlot "github.com/m04kA/SMC-SlotBooking/internal/usecase/book_slot"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64     `json:"id"`
	SlotID         int64     `json:"slotId"`
	StudentID      uuid.UUID `json:"studentId"`
	Status         string    `json:"status"`
	ConfirmedCount int       `json:"confirmedCount"`
	SeatLimit      *int      `json:"seatLimit,omitempty"`
	CreatedAt      string    `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookSlot.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		SlotID:         resp.SlotID,
		StudentID:      resp.StudentID,
		Status:         resp.Status,
		ConfirmedCount: resp.ConfirmedCount,
		SeatLimit:      resp.SeatLimit,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
	}
}
