package update_slot

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

// UpdateSlotRequest HTTP request model, отсутствующие поля не меняются.
// Время и лимит мест проверяются сервисом для итогового состояния слота.
type UpdateSlotRequest struct {
	Subject      *string `json:"subject,omitempty" validate:"omitempty,max=100"`
	Kind         *string `json:"kind,omitempty" validate:"omitempty,oneof=oral written_exam other"`
	Date         *string `json:"date,omitempty" validate:"omitempty,isodate"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	ClearEndTime bool    `json:"clearEndTime,omitempty"`
	SeatLimit    *int    `json:"seatLimit,omitempty"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	ClearNotes   bool    `json:"clearNotes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateSlotRequest) ToServiceRequest(teacherID uuid.UUID, slotID int64) *models.UpdateSlotRequest {
	return &models.UpdateSlotRequest{
		TeacherID:    teacherID,
		SlotID:       slotID,
		Subject:      r.Subject,
		Kind:         r.Kind,
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		ClearEndTime: r.ClearEndTime,
		SeatLimit:    r.SeatLimit,
		Notes:        r.Notes,
		ClearNotes:   r.ClearNotes,
	}
}
