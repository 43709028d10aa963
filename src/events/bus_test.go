package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	all := bus.Subscribe("")
	tasksOnly := bus.Subscribe(TopicTaskEvents)
	remindersOnly := bus.Subscribe(TopicReminders)
	defer bus.Unsubscribe(all)
	defer bus.Unsubscribe(tasksOnly)
	defer bus.Unsubscribe(remindersOnly)

	event := NewEvent(KindCreated, "alice", "task-1", "chat", map[string]interface{}{"title": "Buy milk"})
	require.NoError(t, bus.Publish(ctx, TopicTaskEvents, event))

	got := <-all.Ch()
	assert.Equal(t, TopicTaskEvents, got.Topic)
	assert.Equal(t, KindCreated, got.Payload.Kind)
	assert.Equal(t, "alice", got.Payload.Owner)

	got = <-tasksOnly.Ch()
	assert.Equal(t, "task-1", got.Payload.TaskID)

	select {
	case <-remindersOnly.Ch():
		t.Fatal("reminder subscriber received a task event")
	default:
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	sub := bus.Subscribe("")
	defer bus.Unsubscribe(sub)

	event := NewEvent(KindUpdated, "alice", "task-1", "chat", nil)
	for i := 0; i < defaultBufferSize+10; i++ {
		require.NoError(t, bus.Publish(ctx, TopicTaskEvents, event))
	}

	received := 0
	for {
		select {
		case <-sub.Ch():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, defaultBufferSize, received)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()

	sub := bus.Subscribe("")
	bus.Unsubscribe(sub)

	_, open := <-sub.Ch()
	assert.False(t, open)

	// Double unsubscribe is harmless
	bus.Unsubscribe(sub)

	// Publishing after unsubscribe does not panic
	require.NoError(t, bus.Publish(context.Background(), TopicTaskEvents, Event{}))
}

func TestNewEventFields(t *testing.T) {
	event := NewEvent(KindDeleted, "bob", "task-9", "chat", map[string]interface{}{"title": "Old"})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, KindDeleted, event.Kind)
	assert.Equal(t, "bob", event.Owner)
	assert.Equal(t, "task-9", event.TaskID)
	assert.Equal(t, "chat", event.Source)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "Old", event.Fields["title"])
}
