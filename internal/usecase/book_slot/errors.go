package book_slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден или удален
	ErrSlotNotFound = errors.New("book_slot: slot not found")

	// ErrAlreadyBooked возвращается, когда у студента уже есть подтвержденная запись на слот
	ErrAlreadyBooked = errors.New("book_slot: student already booked this slot")

	// ErrSlotFull возвращается, когда все места слота заняты
	ErrSlotFull = errors.New("book_slot: slot is full")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_slot: internal error")
)
