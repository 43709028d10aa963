package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const deleteTaskPrompt = `Remove a task from the list. This cannot be undone.`

// DeleteTaskInput represents the parameters for delete_task
type DeleteTaskInput struct {
	TaskID string `json:"task_id" required:"true" description:"ID of the task to delete"`
}

// DeleteTaskOutput represents the response from delete_task
type DeleteTaskOutput struct {
	TaskID string `json:"task_id" description:"ID of the deleted task"`
	Status string `json:"status" description:"Always deleted on success"`
	Title  string `json:"title" description:"Title of the deleted task"`
}

// DeleteTaskTool returns the delete_task capability bound to owner.
func DeleteTaskTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(DeleteTaskName, deleteTaskPrompt,
		func(ctx context.Context, input DeleteTaskInput) (DeleteTaskOutput, error) {
			// Read first so the result can echo the title back.
			task, err := deps.Tasks.Get(ctx, owner, input.TaskID)
			if err != nil {
				return DeleteTaskOutput{}, err
			}

			removed, err := deps.Tasks.Delete(ctx, owner, input.TaskID)
			if err != nil {
				return DeleteTaskOutput{}, err
			}
			if !removed {
				return DeleteTaskOutput{}, storage.ErrTaskNotFound
			}

			deps.emit(ctx, events.KindDeleted, owner, task.ID, map[string]interface{}{
				"title": task.Title,
			})

			return DeleteTaskOutput{
				TaskID: task.ID,
				Status: "deleted",
				Title:  task.Title,
			}, nil
		})
}
