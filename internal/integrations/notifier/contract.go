package notifier

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Notifier доставляет события диспетчеру уведомлений
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// Publisher часть *redis.Client, нужная для публикации
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
