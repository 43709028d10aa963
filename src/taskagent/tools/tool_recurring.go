package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const createRecurringPrompt = `Create a recurring task. When the task is completed, the next occurrence is scheduled automatically according to the pattern.`

// CreateRecurringInput represents the parameters for create_recurring
type CreateRecurringInput struct {
	Title       string   `json:"title" required:"true" description:"Title of the task"`
	Pattern     string   `json:"pattern" required:"true" description:"Recurrence pattern: daily, weekly, or monthly"`
	DueDate     string   `json:"due_date" required:"true" description:"First due date in RFC 3339 format"`
	Description string   `json:"description,omitempty" description:"Optional longer description"`
	Priority    string   `json:"priority,omitempty" description:"Priority: high, medium, or low, default medium"`
	Tags        []string `json:"tags,omitempty" description:"Optional tags"`
}

// CreateRecurringOutput represents the response from create_recurring
type CreateRecurringOutput struct {
	TaskID string      `json:"task_id" description:"ID of the created task"`
	Status string      `json:"status" description:"Always created on success"`
	Task   TaskSummary `json:"task" description:"The created task"`
}

func makeCreateRecurringHandler(deps Deps, owner string) func(ctx context.Context, input CreateRecurringInput) (CreateRecurringOutput, error) {
	return func(ctx context.Context, input CreateRecurringInput) (CreateRecurringOutput, error) {
		due, err := parseDueDate(input.DueDate)
		if err != nil {
			return CreateRecurringOutput{}, fmt.Errorf("invalid due_date: %w", err)
		}

		pattern := input.Pattern
		task, err := deps.Tasks.Create(ctx, owner, storage.CreateTaskParams{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Tags:        input.Tags,
			DueDate:     &due,
			Recurrence:  &pattern,
		})
		if err != nil {
			return CreateRecurringOutput{}, err
		}

		deps.emit(ctx, events.KindCreated, owner, task.ID, map[string]interface{}{
			"title":      task.Title,
			"recurrence": pattern,
			"due_date":   due.Format(time.RFC3339),
		})
		if task.ReminderAt != nil {
			deps.emitReminder(ctx, owner, task.ID, *task.ReminderAt)
		}

		return CreateRecurringOutput{
			TaskID: task.ID,
			Status: "created",
			Task:   summarize(task),
		}, nil
	}
}

// CreateRecurringTool returns the create_recurring capability bound to owner.
func CreateRecurringTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(CreateRecurringName, createRecurringPrompt, makeCreateRecurringHandler(deps, owner))
}
