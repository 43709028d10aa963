package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const updateTaskPrompt = `Update a task's properties. Only provided fields change; tags replace the existing set. Set recurring to "none" to stop a task repeating.`

// UpdateTaskInput represents the parameters for update_task
type UpdateTaskInput struct {
	TaskID      string   `json:"task_id" required:"true" description:"ID of the task to update"`
	Title       string   `json:"title,omitempty" description:"New title (leave empty to keep current)"`
	Description string   `json:"description,omitempty" description:"New description (leave empty to keep current)"`
	Priority    string   `json:"priority,omitempty" description:"New priority: high, medium, or low"`
	Tags        []string `json:"tags,omitempty" description:"New tags list (replaces existing)"`
	DueDate     string   `json:"due_date,omitempty" description:"New due date in ISO format"`
	Recurring   string   `json:"recurring,omitempty" description:"New recurring pattern: daily, weekly, monthly, or none to clear"`
}

// UpdateTaskOutput represents the response from update_task
type UpdateTaskOutput struct {
	TaskID string      `json:"task_id" description:"ID of the updated task"`
	Status string      `json:"status" description:"Always updated on success"`
	Task   TaskSummary `json:"task" description:"The task after the update"`
}

// UpdateTaskTool returns the update_task capability bound to owner.
func UpdateTaskTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(UpdateTaskName, updateTaskPrompt,
		func(ctx context.Context, input UpdateTaskInput) (UpdateTaskOutput, error) {
			params := storage.UpdateTaskParams{
				Title:    input.Title,
				Priority: input.Priority,
			}
			if input.Description != "" {
				description := input.Description
				params.Description = &description
			}
			if input.Tags != nil {
				tags := input.Tags
				params.Tags = &tags
			}
			if input.DueDate != "" {
				due, err := parseDueDate(input.DueDate)
				if err != nil {
					return UpdateTaskOutput{}, err
				}
				params.DueDate = &due
			}
			switch input.Recurring {
			case "":
			case "none":
				params.ClearRecurrence = true
			default:
				params.Recurrence = input.Recurring
			}

			task, err := deps.Tasks.Update(ctx, owner, input.TaskID, params)
			if err != nil {
				return UpdateTaskOutput{}, err
			}

			deps.emit(ctx, events.KindUpdated, owner, task.ID, map[string]interface{}{
				"title":    task.Title,
				"priority": task.Priority,
			})

			return UpdateTaskOutput{
				TaskID: task.ID,
				Status: "updated",
				Task:   summarize(task),
			}, nil
		})
}
