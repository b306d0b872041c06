package create_slot

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
)

// CreateSlotRequest HTTP request model.
// Формат времени и лимит мест проверяет сервис: сначала учебный день, потом остальное,
// а лимит для written_exam игнорируется.
type CreateSlotRequest struct {
	ClassID   string  `json:"classId" validate:"required,uuid"`
	Subject   string  `json:"subject" validate:"required,max=100"`
	Kind      string  `json:"kind" validate:"required,oneof=oral written_exam other"`
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   *string `json:"endTime,omitempty"`
	SeatLimit *int    `json:"seatLimit,omitempty"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateSlotRequest) ToServiceRequest(teacherID uuid.UUID) *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		TeacherID: teacherID,
		ClassID:   uuid.MustParse(r.ClassID),
		Subject:   r.Subject,
		Kind:      r.Kind,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		SeatLimit: r.SeatLimit,
		Notes:     r.Notes,
	}
}
