package book_slot

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на запись студента
type Request struct {
	StudentID uuid.UUID // студент, от имени которого идет запись
	SlotID    int64     // ID слота
}

// Response модель ответа с созданной записью
type Response struct {
	ID        int64     // ID бронирования
	SlotID    int64     // ID слота
	StudentID uuid.UUID // ID студента
	Status    string    // всегда confirmed
	CreatedAt time.Time // Время создания

	// Заполненность слота сразу после записи
	ConfirmedCount int  // подтвержденных записей, включая эту
	SeatLimit      *int // nil для слотов без лимита
}
