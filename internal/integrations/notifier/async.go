package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Async отправляет события в фоне: Notify не ждет доставки и не возвращает ее ошибок.
// Ошибки доставки только логируются, на транзакцию бронирования они не влияют.
type Async struct {
	next    Notifier
	timeout time.Duration
	log     Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync оборачивает диспетчер; timeout ограничивает одну доставку
func NewAsync(next Notifier, timeout time.Duration, log Logger) *Async {
	return &Async{
		next:    next,
		timeout: timeout,
		log:     log,
	}
}

// Notify запускает доставку в отдельной горутине.
// Контекст запроса отвязывается от отмены: клиент может уже получить ответ и закрыть соединение
func (a *Async) Notify(ctx context.Context, event domain.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.log.Warn("Notify: dispatcher closed, dropping %s slot_id=%d", event.Type, event.SlotID)
		return ErrClosed
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.Notify(sendCtx, event); err != nil {
			a.log.Error("Notify: failed to deliver %s slot_id=%d: %v", event.Type, event.SlotID, err)
		}
	}()

	return nil
}

// Close перестает принимать события и ждет завершения начатых доставок
func (a *Async) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
}
