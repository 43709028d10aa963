package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/aisdk"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

// captureSink records every published event with the topic it went to.
type captureSink struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	topic string
	event events.Event
}

func (s *captureSink) Publish(ctx context.Context, topic string, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, publishedEvent{topic: topic, event: event})
	return nil
}

// kinds returns the event types published to the main task topic, in order.
func (s *captureSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.published))
	for _, p := range s.published {
		if p.topic == events.TopicTaskEvents {
			out = append(out, p.event.Kind)
		}
	}
	return out
}

func (s *captureSink) reminders() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, p := range s.published {
		if p.topic == events.TopicReminders {
			out = append(out, p.event)
		}
	}
	return out
}

type toolEnv struct {
	toolbox *agent.Toolbox
	tasks   *storage.TaskStore
	sink    *captureSink
}

func newToolEnv(t *testing.T, owner string) *toolEnv {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taskStore := storage.NewTaskStore(db, logger)
	sink := &captureSink{}

	tb, err := NewToolbox(Deps{Tasks: taskStore, Sink: sink, Logger: logger}, owner)
	require.NoError(t, err)

	return &toolEnv{toolbox: tb, tasks: taskStore, sink: sink}
}

// run executes a capability and decodes its successful output into out.
func (e *toolEnv) run(t *testing.T, name, args string, out interface{}) {
	t.Helper()
	resp := e.exec(t, name, args)
	require.False(t, resp.IsError, "tool %s failed: %s", name, string(resp.Content))
	require.NoError(t, json.Unmarshal(resp.Content, out))
}

func (e *toolEnv) exec(t *testing.T, name, args string) *aisdk.ToolResponse {
	t.Helper()
	resp, err := e.toolbox.ExecuteTool(context.Background(), &aisdk.ToolCall{
		ID:       "call_test",
		Type:     "function",
		Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	return resp
}

func TestToolboxRegistersAllCapabilities(t *testing.T) {
	env := newToolEnv(t, "alice")

	want := []string{
		AddTaskName, ListTasksName, SearchTasksName, FilterTasksName, SortTasksName,
		CompleteTaskName, DeleteTaskName, UpdateTaskName, SetPriorityName,
		AddTagName, RemoveTagName, SetDueDateName, CreateRecurringName,
	}
	tools := env.toolbox.Tools()
	require.Len(t, tools, len(want))
	for i, tool := range tools {
		assert.Equal(t, want[i], tool.GetName())
	}
}

func TestAddTask(t *testing.T) {
	env := newToolEnv(t, "alice")

	var out AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Buy milk","priority":"high","tags":["errand"],"due_date":"2026-01-20T18:00:00Z"}`, &out)

	assert.Equal(t, "created", out.Status)
	assert.NotEmpty(t, out.TaskID)
	assert.Equal(t, "Buy milk", out.Task.Title)
	assert.Equal(t, storage.PriorityHigh, out.Task.Priority)
	assert.Equal(t, []string{"errand"}, out.Task.Tags)
	assert.Equal(t, "2026-01-20T18:00:00Z", out.Task.DueDate)

	stored, err := env.tasks.Get(context.Background(), "alice", out.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", stored.Title)

	assert.Equal(t, []string{events.KindCreated}, env.sink.kinds())
}

func TestAddTaskValidationSurfacesAsToolError(t *testing.T) {
	env := newToolEnv(t, "alice")

	resp := env.exec(t, AddTaskName, `{"title":"x","priority":"urgent"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "priority")
	assert.Empty(t, env.sink.kinds())
}

func TestAddTaskMissingTitle(t *testing.T) {
	env := newToolEnv(t, "alice")

	resp := env.exec(t, AddTaskName, `{"priority":"high"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "title")
}

func TestListSearchFilterSort(t *testing.T) {
	env := newToolEnv(t, "alice")
	ctx := context.Background()

	var groceries, rent AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Buy groceries","priority":"low","tags":["errand"]}`, &groceries)
	env.run(t, AddTaskName, `{"title":"Pay rent","priority":"high"}`, &rent)
	var callMom AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Call mom","priority":"medium"}`, &callMom)

	_, err := env.tasks.Toggle(ctx, "alice", callMom.TaskID)
	require.NoError(t, err)

	var list ListTasksOutput
	env.run(t, ListTasksName, `{"status":"pending"}`, &list)
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.PendingCount)
	assert.Equal(t, 0, list.CompletedCount)

	var search ListTasksOutput
	env.run(t, SearchTasksName, `{"query":"groc"}`, &search)
	require.Len(t, search.Tasks, 1)
	assert.Equal(t, "Buy groceries", search.Tasks[0].Title)

	var filtered ListTasksOutput
	env.run(t, FilterTasksName, `{"tags":["errand"]}`, &filtered)
	require.Len(t, filtered.Tasks, 1)
	assert.Equal(t, groceries.TaskID, filtered.Tasks[0].ID)

	var sorted ListTasksOutput
	env.run(t, SortTasksName, `{"sort_by":"priority","order":"desc"}`, &sorted)
	require.Len(t, sorted.Tasks, 3)
	assert.Equal(t, "Pay rent", sorted.Tasks[0].Title)
	assert.Equal(t, "Call mom", sorted.Tasks[1].Title)
	assert.Equal(t, "Buy groceries", sorted.Tasks[2].Title)
}

func TestCompleteTaskRecurringSpawnsNext(t *testing.T) {
	env := newToolEnv(t, "alice")

	var created CreateRecurringOutput
	env.run(t, CreateRecurringName, `{"title":"Water plants","pattern":"weekly","due_date":"2026-01-15T09:00:00Z"}`, &created)
	assert.Equal(t, "created", created.Status)
	assert.Equal(t, "weekly", created.Task.Recurrence)
	assert.Len(t, env.sink.reminders(), 1)

	var completed CompleteTaskOutput
	env.run(t, CompleteTaskName, `{"task_id":"`+created.TaskID+`"}`, &completed)
	assert.Equal(t, "completed", completed.Status)
	assert.True(t, completed.Task.Completed)
	require.NotNil(t, completed.NextTask)
	assert.Equal(t, "Water plants", completed.NextTask.Title)
	assert.Equal(t, "2026-01-22T09:00:00Z", completed.NextDueDate)

	// created, completed, and the spawned occurrence's created
	assert.Equal(t, []string{events.KindCreated, events.KindCompleted, events.KindCreated}, env.sink.kinds())

	// Reopening reports the flip without another spawn
	var reopened CompleteTaskOutput
	env.run(t, CompleteTaskName, `{"task_id":"`+created.TaskID+`"}`, &reopened)
	assert.Equal(t, "reopened", reopened.Status)
	assert.Nil(t, reopened.NextTask)
}

func TestDeleteTask(t *testing.T) {
	env := newToolEnv(t, "alice")

	var created AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Ephemeral"}`, &created)

	var deleted DeleteTaskOutput
	env.run(t, DeleteTaskName, `{"task_id":"`+created.TaskID+`"}`, &deleted)
	assert.Equal(t, "deleted", deleted.Status)
	assert.Equal(t, "Ephemeral", deleted.Title)

	resp := env.exec(t, DeleteTaskName, `{"task_id":"`+created.TaskID+`"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "not found")
}

func TestUpdateTaskAndSetPriority(t *testing.T) {
	env := newToolEnv(t, "alice")

	var created AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Draft"}`, &created)

	var updated UpdateTaskOutput
	env.run(t, UpdateTaskName, `{"task_id":"`+created.TaskID+`","title":"Final","recurring":"daily"}`, &updated)
	assert.Equal(t, "Final", updated.Task.Title)
	assert.Equal(t, "daily", updated.Task.Recurrence)

	var cleared UpdateTaskOutput
	env.run(t, UpdateTaskName, `{"task_id":"`+created.TaskID+`","recurring":"none"}`, &cleared)
	assert.Empty(t, cleared.Task.Recurrence)

	var prio SetPriorityOutput
	env.run(t, SetPriorityName, `{"task_id":"`+created.TaskID+`","priority":"low"}`, &prio)
	assert.Equal(t, storage.PriorityLow, prio.Priority)
}

func TestTagTools(t *testing.T) {
	env := newToolEnv(t, "alice")

	var created AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Tagged","tags":["home"]}`, &created)

	var added TagOutput
	env.run(t, AddTagName, `{"task_id":"`+created.TaskID+`","tag":"work"}`, &added)
	assert.Equal(t, []string{"home", "work"}, added.Tags)

	var removed TagOutput
	env.run(t, RemoveTagName, `{"task_id":"`+created.TaskID+`","tag":"home"}`, &removed)
	assert.Equal(t, []string{"work"}, removed.Tags)

	resp := env.exec(t, AddTagName, `{"task_id":"`+created.TaskID+`"}`)
	assert.True(t, resp.IsError)
}

func TestSetDueDate(t *testing.T) {
	env := newToolEnv(t, "alice")

	var created AddTaskOutput
	env.run(t, AddTaskName, `{"title":"Scheduled"}`, &created)

	var out SetDueDateOutput
	env.run(t, SetDueDateName, `{"task_id":"`+created.TaskID+`","due_date":"2026-02-01T12:00:00Z","reminder_minutes_before":30}`, &out)
	assert.Equal(t, "2026-02-01T12:00:00Z", out.DueDate)
	assert.Equal(t, "2026-02-01T11:30:00Z", out.ReminderAt)

	// Default reminder offset is an hour
	var def SetDueDateOutput
	env.run(t, SetDueDateName, `{"task_id":"`+created.TaskID+`","due_date":"2026-03-01T12:00:00Z"}`, &def)
	assert.Equal(t, "2026-03-01T11:00:00Z", def.ReminderAt)

	// Each scheduling publishes on the reminders topic
	reminders := env.sink.reminders()
	require.Len(t, reminders, 2)
	assert.Equal(t, "2026-02-01T11:30:00Z", reminders[0].Fields["reminder_at"])
	assert.Equal(t, "2026-03-01T11:00:00Z", reminders[1].Fields["reminder_at"])

	resp := env.exec(t, SetDueDateName, `{"task_id":"`+created.TaskID+`","due_date":"tomorrow"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "due_date")
}

func TestOwnerBindingIsolatesTasks(t *testing.T) {
	alice := newToolEnv(t, "alice")

	var created AddTaskOutput
	alice.run(t, AddTaskName, `{"title":"Mine"}`, &created)

	// A toolbox bound to a different owner on the same store cannot touch it
	bobToolbox, err := NewToolbox(Deps{Tasks: alice.tasks, Sink: alice.sink}, "bob")
	require.NoError(t, err)

	resp, err := bobToolbox.ExecuteTool(context.Background(), &aisdk.ToolCall{
		ID:       "call_bob",
		Type:     "function",
		Function: aisdk.FunctionCall{Name: CompleteTaskName, Arguments: json.RawMessage(`{"task_id":"` + created.TaskID + `"}`)},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "not found")
}

func TestSummaryFormatLine(t *testing.T) {
	due := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)
	recurrence := storage.RecurrenceWeekly
	task := &storage.Task{
		Title:      "Water plants",
		Priority:   storage.PriorityLow,
		Tags:       storage.JSONStringArray{"home", "garden"},
		DueDate:    &due,
		Recurrence: &recurrence,
	}

	line := Summarize(task).FormatLine()
	assert.Equal(t, "[ ] Water plants (low, due 2026-01-20T18:00:00Z, repeats weekly) #home #garden", line)

	task.Completed = true
	task.DueDate = nil
	task.Recurrence = nil
	task.Tags = nil
	line = Summarize(task).FormatLine()
	assert.Equal(t, "[x] Water plants (low)", line)
}
