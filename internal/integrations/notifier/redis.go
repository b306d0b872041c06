package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// RedisNotifier публикует события в Redis pub/sub канал,
// откуда их забирает сервис push-уведомлений
type RedisNotifier struct {
	publisher Publisher
	channel   string
	log       Logger
}

// NewRedisClient создает клиента Redis
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisNotifier создает диспетчер поверх Redis
func NewRedisNotifier(publisher Publisher, channel string, log Logger) *RedisNotifier {
	return &RedisNotifier{
		publisher: publisher,
		channel:   channel,
		log:       log,
	}
}

// Notify публикует событие
func (n *RedisNotifier) Notify(ctx context.Context, event domain.Event) error {
	msg := NewMessage(event)

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	receivers, err := n.publisher.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("%w: channel=%s: %v", ErrPublish, n.channel, err)
	}

	n.log.Info("Notify: published %s id=%s slot_id=%d receivers=%d", msg.Type, msg.ID, msg.SlotID, receivers)
	return nil
}
