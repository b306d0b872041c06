package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func sampleEvent() domain.Event {
	slot := &domain.Slot{
		ID:        42,
		TeacherID: uuid.New(),
		ClassID:   uuid.New(),
		Subject:   "Latin",
		Kind:      domain.KindOral,
		Date:      time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "10:15",
	}
	booking := &domain.Booking{ID: 7, SlotID: 42, StudentID: uuid.New()}
	return domain.NewBookingEvent(domain.EventBookingConfirmed, slot, booking, time.Now())
}

func TestRedisNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "school.events", logger.NewNop())
	event := sampleEvent()

	require.NoError(t, n.Notify(context.Background(), event))
	assert.Equal(t, "school.events", pub.channel)

	var msg Message
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, "booking.confirmed", msg.Type)
	assert.Equal(t, int64(42), msg.SlotID)
	require.NotNil(t, msg.BookingID)
	assert.Equal(t, int64(7), *msg.BookingID)
	assert.Equal(t, "2025-03-11", msg.Date)
	assert.Equal(t, "10:15", msg.StartTime)
	assert.Equal(t, event.StudentIDs, msg.StudentIDs)
}

func TestRedisNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	n := NewRedisNotifier(pub, "school.events", logger.NewNop())

	err := n.Notify(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, ErrPublish)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
	ctxErr []error
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.ctxErr = append(r.ctxErr, ctx.Err())
	return r.err
}

func TestAsync_DeliversAfterRequestContextCancelled(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("push gateway down")}
	a := NewAsync(rec, time.Second, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Notify(ctx, sampleEvent()))
	cancel()

	a.Close()

	require.Len(t, rec.events, 1)
	assert.NoError(t, rec.ctxErr[0])
	assert.ErrorIs(t, a.Notify(context.Background(), sampleEvent()), ErrClosed)
}

func TestNewMessage_SlotEvent(t *testing.T) {
	slot := &domain.Slot{ID: 3, Kind: domain.KindWrittenExam}
	msg := NewMessage(domain.NewSlotEvent(domain.EventSlotDeleted, slot, nil, time.Now()))

	assert.Nil(t, msg.BookingID)
	assert.NotNil(t, msg.StudentIDs)
	assert.Equal(t, "written_exam", msg.Kind)
}
