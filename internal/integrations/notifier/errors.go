package notifier

import "errors"

var (
	// ErrEncode возвращается, когда событие не удалось сериализовать
	ErrEncode = errors.New("notifier: failed to encode event")

	// ErrPublish возвращается, когда Redis не принял сообщение
	ErrPublish = errors.New("notifier: failed to publish event")

	// ErrClosed возвращается после Close асинхронного диспетчера
	ErrClosed = errors.New("notifier: dispatcher is closed")
)
