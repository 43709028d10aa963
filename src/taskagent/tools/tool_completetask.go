package tools

import (
	"context"
	"time"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
)

const completeTaskPrompt = `Mark a task as done. Completing a recurring task automatically creates the next occurrence.`

// CompleteTaskInput represents the parameters for complete_task
type CompleteTaskInput struct {
	TaskID string `json:"task_id" required:"true" description:"ID of the task to complete"`
}

// CompleteTaskOutput represents the response from complete_task
type CompleteTaskOutput struct {
	TaskID      string       `json:"task_id" description:"ID of the toggled task"`
	Status      string       `json:"status" description:"completed or reopened"`
	Task        TaskSummary  `json:"task" description:"The task after toggling"`
	NextTask    *TaskSummary `json:"next_task,omitempty" description:"Next occurrence spawned for recurring tasks"`
	NextDueDate string       `json:"next_due_date,omitempty" description:"Due date of the next occurrence"`
}

// CompleteTaskTool returns the complete_task capability bound to owner.
func CompleteTaskTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(CompleteTaskName, completeTaskPrompt,
		func(ctx context.Context, input CompleteTaskInput) (CompleteTaskOutput, error) {
			result, err := deps.Tasks.Toggle(ctx, owner, input.TaskID)
			if err != nil {
				return CompleteTaskOutput{}, err
			}

			status := "reopened"
			kind := events.KindUpdated
			if result.Task.Completed {
				status = "completed"
				kind = events.KindCompleted
			}
			deps.emit(ctx, kind, owner, result.Task.ID, map[string]interface{}{
				"title":     result.Task.Title,
				"completed": result.Task.Completed,
			})

			out := CompleteTaskOutput{
				TaskID: result.Task.ID,
				Status: status,
				Task:   summarize(result.Task),
			}
			if result.Spawned != nil {
				next := summarize(result.Spawned)
				out.NextTask = &next
				if result.Spawned.DueDate != nil {
					out.NextDueDate = result.Spawned.DueDate.UTC().Format(time.RFC3339)
				}
				deps.emit(ctx, events.KindCreated, owner, result.Spawned.ID, map[string]interface{}{
					"title":                result.Spawned.Title,
					"recurrence_parent_id": result.Task.ID,
				})
			}
			return out, nil
		})
}
