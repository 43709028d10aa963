package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const addTaskPrompt = `Create a new task with optional priority, tags, due date, and recurring pattern.`

// AddTaskInput represents the parameters for add_task
type AddTaskInput struct {
	Title       string   `json:"title" required:"true" description:"Task title (1-200 chars)"`
	Description string   `json:"description,omitempty" description:"Task description (max 1000 chars)"`
	Priority    string   `json:"priority,omitempty" description:"Priority level: high, medium, or low (default medium)"`
	Tags        []string `json:"tags,omitempty" description:"List of tags like [\"work\", \"urgent\"]"`
	DueDate     string   `json:"due_date,omitempty" description:"ISO format datetime like 2024-01-20T18:00:00Z"`
	Recurring   string   `json:"recurring,omitempty" description:"Recurring pattern: daily, weekly, or monthly"`
}

// AddTaskOutput represents the response from add_task
type AddTaskOutput struct {
	TaskID string      `json:"task_id" description:"ID of the created task"`
	Status string      `json:"status" description:"Always created on success"`
	Task   TaskSummary `json:"task" description:"The created task"`
}

// AddTaskTool returns the add_task capability bound to owner.
func AddTaskTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(AddTaskName, addTaskPrompt, makeAddTaskHandler(deps, owner))
}

func makeAddTaskHandler(deps Deps, owner string) func(ctx context.Context, input AddTaskInput) (AddTaskOutput, error) {
	return func(ctx context.Context, input AddTaskInput) (AddTaskOutput, error) {
		params := storage.CreateTaskParams{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Tags:        input.Tags,
		}
		if input.DueDate != "" {
			due, err := parseDueDate(input.DueDate)
			if err != nil {
				return AddTaskOutput{}, err
			}
			params.DueDate = &due
		}
		if input.Recurring != "" {
			recurring := input.Recurring
			params.Recurrence = &recurring
		}

		task, err := deps.Tasks.Create(ctx, owner, params)
		if err != nil {
			return AddTaskOutput{}, err
		}

		deps.emit(ctx, events.KindCreated, owner, task.ID, map[string]interface{}{
			"title":    task.Title,
			"priority": task.Priority,
		})

		return AddTaskOutput{
			TaskID: task.ID,
			Status: "created",
			Task:   summarize(task),
		}, nil
	}
}
