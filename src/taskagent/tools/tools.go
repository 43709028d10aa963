// Package tools defines the fixed capability set the task assistant may
// invoke. Every capability is bound to a verified owner id when the toolbox
// is built; the model never supplies an owner and cannot reach another
// user's tasks.
package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

// Capability names.
const (
	AddTaskName         = "add_task"
	ListTasksName       = "list_tasks"
	SearchTasksName     = "search_tasks"
	FilterTasksName     = "filter_tasks"
	SortTasksName       = "sort_tasks"
	CompleteTaskName    = "complete_task"
	DeleteTaskName      = "delete_task"
	UpdateTaskName      = "update_task"
	SetPriorityName     = "set_priority"
	AddTagName          = "add_tag"
	RemoveTagName       = "remove_tag"
	SetDueDateName      = "set_due_date"
	CreateRecurringName = "create_recurring"
)

// EventSource identifies chat-originated mutations to the event sink.
const EventSource = "chat"

// Deps are the shared dependencies of every capability handler.
type Deps struct {
	Tasks  *storage.TaskStore
	Sink   events.Sink
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// emit publishes a task event. Publish failures are logged, never propagated:
// event delivery must not fail the mutation that produced it.
func (d Deps) emit(ctx context.Context, kind, owner, taskID string, fields map[string]interface{}) {
	if d.Sink == nil {
		return
	}
	event := events.NewEvent(kind, owner, taskID, EventSource, fields)
	if err := d.Sink.Publish(ctx, events.TopicTaskEvents, event); err != nil {
		d.logger().Warn("failed to publish task event", "kind", kind, "task_id", taskID, "error", err)
	}
}

// emitReminder publishes a reminder scheduling notice on the reminders topic.
func (d Deps) emitReminder(ctx context.Context, owner, taskID string, remindAt time.Time) {
	if d.Sink == nil {
		return
	}
	event := events.NewEvent(events.KindUpdated, owner, taskID, EventSource, map[string]interface{}{
		"reminder_at": remindAt.UTC().Format(time.RFC3339),
	})
	if err := d.Sink.Publish(ctx, events.TopicReminders, event); err != nil {
		d.logger().Warn("failed to publish reminder event", "task_id", taskID, "error", err)
	}
}

// NewToolbox builds the capability registry for one verified owner.
func NewToolbox(deps Deps, owner string) (*agent.Toolbox, error) {
	tb := agent.NewToolbox()

	builders := []func(Deps, string) (agent.Tool, error){
		AddTaskTool,
		ListTasksTool,
		SearchTasksTool,
		FilterTasksTool,
		SortTasksTool,
		CompleteTaskTool,
		DeleteTaskTool,
		UpdateTaskTool,
		SetPriorityTool,
		AddTagTool,
		RemoveTagTool,
		SetDueDateTool,
		CreateRecurringTool,
	}
	for _, build := range builders {
		tool, err := build(deps, owner)
		if err != nil {
			return nil, err
		}
		if err := tb.RegisterTool(tool); err != nil {
			return nil, err
		}
	}

	return tb, nil
}
