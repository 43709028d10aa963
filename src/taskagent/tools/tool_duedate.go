package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const setDueDatePrompt = `Set or change a task's due date. The reminder is scheduled before the due date, defaulting to 60 minutes.`

// SetDueDateInput represents the parameters for set_due_date
type SetDueDateInput struct {
	TaskID                string `json:"task_id" required:"true" description:"ID of the task"`
	DueDate               string `json:"due_date" required:"true" description:"Due date in RFC 3339 format, e.g. 2026-01-15T09:00:00Z"`
	ReminderMinutesBefore int    `json:"reminder_minutes_before,omitempty" description:"How many minutes before the due date to remind, default 60"`
}

// SetDueDateOutput represents the response from set_due_date
type SetDueDateOutput struct {
	TaskID     string `json:"task_id" description:"ID of the updated task"`
	Status     string `json:"status" description:"Always updated on success"`
	Title      string `json:"title" description:"Task title"`
	DueDate    string `json:"due_date" description:"The new due date"`
	ReminderAt string `json:"reminder_at" description:"When the reminder fires"`
}

func makeSetDueDateHandler(deps Deps, owner string) func(ctx context.Context, input SetDueDateInput) (SetDueDateOutput, error) {
	return func(ctx context.Context, input SetDueDateInput) (SetDueDateOutput, error) {
		due, err := parseDueDate(input.DueDate)
		if err != nil {
			return SetDueDateOutput{}, fmt.Errorf("invalid due_date: %w", err)
		}

		offset := storage.DefaultReminderOffset
		if input.ReminderMinutesBefore > 0 {
			offset = time.Duration(input.ReminderMinutesBefore) * time.Minute
		}

		task, err := deps.Tasks.SetDueDate(ctx, owner, input.TaskID, &due, offset)
		if err != nil {
			return SetDueDateOutput{}, err
		}

		deps.emit(ctx, events.KindUpdated, owner, task.ID, map[string]interface{}{
			"due_date":    task.DueDate,
			"reminder_at": task.ReminderAt,
		})
		if task.ReminderAt != nil {
			deps.emitReminder(ctx, owner, task.ID, *task.ReminderAt)
		}

		out := SetDueDateOutput{
			TaskID: task.ID,
			Status: "updated",
			Title:  task.Title,
		}
		if task.DueDate != nil {
			out.DueDate = task.DueDate.Format(time.RFC3339)
		}
		if task.ReminderAt != nil {
			out.ReminderAt = task.ReminderAt.Format(time.RFC3339)
		}
		return out, nil
	}
}

// SetDueDateTool returns the set_due_date capability bound to owner.
func SetDueDateTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(SetDueDateName, setDueDatePrompt, makeSetDueDateHandler(deps, owner))
}
