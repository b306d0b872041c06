package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrSlotNotFound возвращается, когда слот не найден или удален
	ErrSlotNotFound = errors.New("bookings: slot not found")

	// ErrForbidden возвращается, когда у пользователя нет прав на бронирование или слот
	ErrForbidden = errors.New("bookings: access denied")

	// ErrValidation возвращается при некорректных входных данных
	ErrValidation = errors.New("bookings: invalid input data")

	// ErrExport возвращается, когда не удалось сформировать файл выгрузки
	ErrExport = errors.New("bookings: export failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
