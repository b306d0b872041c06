package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден или удален
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrNoTransaction возвращается, когда блокировка строки запрошена вне транзакции
	ErrNoTransaction = errors.New("slot.repository: operation requires a transaction")

	// ErrConstraint возвращается при нарушении CHECK ограничений таблицы
	ErrConstraint = errors.New("slot.repository: constraint violation")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
