package slots

import "errors"

var (
	// ErrValidation возвращается при некорректных входных данных
	ErrValidation = errors.New("slots: validation error")

	// ErrInvalidDate возвращается, когда дата не является учебным днем
	ErrInvalidDate = errors.New("slots: date is not a teaching day")

	// ErrSlotNotFound возвращается, когда слот не найден или удален
	ErrSlotNotFound = errors.New("slots: slot not found")

	// ErrForbidden возвращается, когда учитель не является владельцем слота
	ErrForbidden = errors.New("slots: forbidden")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)
