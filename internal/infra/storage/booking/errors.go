package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotFull возвращается, когда все места слота заняты
	ErrSlotFull = errors.New("booking.repository: slot is full")

	// ErrAlreadyBooked возвращается, когда у студента уже есть подтвержденное бронирование слота
	ErrAlreadyBooked = errors.New("booking.repository: student already booked this slot")

	// ErrNoTransaction возвращается, когда операция требует транзакцию с блокировкой слота
	ErrNoTransaction = errors.New("booking.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
