// Package events defines the abstract publish point the core calls after
// state-changing task operations. Concrete delivery is a sink concern;
// emission is at-least-once and publish failures never fail the request that
// produced them.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event kinds.
const (
	KindCreated   = "created"
	KindUpdated   = "updated"
	KindCompleted = "completed"
	KindDeleted   = "deleted"
)

// Topics.
const (
	TopicTaskEvents = "task.events"
	TopicReminders  = "task.reminders"
)

// Event is a structured record of a state-changing task operation.
type Event struct {
	ID        string                 `json:"event_id"`
	Kind      string                 `json:"event_type"`
	Owner     string                 `json:"owner"`
	TaskID    string                 `json:"task_id"`
	Fields    map[string]interface{} `json:"task_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(kind, owner, taskID, source string, fields map[string]interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Owner:     owner,
		TaskID:    taskID,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// Sink receives events. Implementations own delivery guarantees and fan-out.
type Sink interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// LogSink writes events to a structured logger. It is the default sink when
// no downstream transport is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs every event.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "event_sink")}
}

// Publish implements Sink.
func (s *LogSink) Publish(ctx context.Context, topic string, event Event) error {
	s.logger.Info("event published",
		"topic", topic,
		"event_id", event.ID,
		"kind", event.Kind,
		"owner", event.Owner,
		"task_id", event.TaskID,
		"source", event.Source,
	)
	return nil
}

// Discard is a sink that drops everything. Useful in tests.
type Discard struct{}

// Publish implements Sink.
func (Discard) Publish(ctx context.Context, topic string, event Event) error { return nil }
