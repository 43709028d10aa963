package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const setPriorityPrompt = `Set task priority: high, medium, or low.`

// SetPriorityInput represents the parameters for set_priority
type SetPriorityInput struct {
	TaskID   string `json:"task_id" required:"true" description:"ID of the task"`
	Priority string `json:"priority" required:"true" description:"Priority level: high, medium, or low"`
}

// SetPriorityOutput represents the response from set_priority
type SetPriorityOutput struct {
	TaskID   string `json:"task_id" description:"ID of the updated task"`
	Status   string `json:"status" description:"Always updated on success"`
	Title    string `json:"title" description:"Task title"`
	Priority string `json:"priority" description:"The new priority"`
}

// SetPriorityTool returns the set_priority capability bound to owner.
func SetPriorityTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(SetPriorityName, setPriorityPrompt,
		func(ctx context.Context, input SetPriorityInput) (SetPriorityOutput, error) {
			task, err := deps.Tasks.Update(ctx, owner, input.TaskID, storage.UpdateTaskParams{
				Priority: input.Priority,
			})
			if err != nil {
				return SetPriorityOutput{}, err
			}

			deps.emit(ctx, events.KindUpdated, owner, task.ID, map[string]interface{}{
				"priority": task.Priority,
			})

			return SetPriorityOutput{
				TaskID:   task.ID,
				Status:   "updated",
				Title:    task.Title,
				Priority: task.Priority,
			}, nil
		})
}
