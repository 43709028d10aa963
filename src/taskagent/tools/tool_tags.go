package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/events"
	"github.com/elee1766/taskchat/src/storage"
)

const (
	addTagPrompt    = `Add a tag to a task.`
	removeTagPrompt = `Remove a tag from a task.`
)

// TagInput represents the parameters for add_tag and remove_tag
type TagInput struct {
	TaskID string `json:"task_id" required:"true" description:"ID of the task"`
	Tag    string `json:"tag" required:"true" description:"The tag"`
}

// TagOutput represents the response from add_tag and remove_tag
type TagOutput struct {
	TaskID string   `json:"task_id" description:"ID of the updated task"`
	Status string   `json:"status" description:"Always updated on success"`
	Title  string   `json:"title" description:"Task title"`
	Tags   []string `json:"tags" description:"The task's tags after the change"`
}

func makeTagHandler(deps Deps, owner, action string) func(ctx context.Context, input TagInput) (TagOutput, error) {
	return func(ctx context.Context, input TagInput) (TagOutput, error) {
		task, err := deps.Tasks.SetTags(ctx, owner, input.TaskID, action, []string{input.Tag})
		if err != nil {
			return TagOutput{}, err
		}

		deps.emit(ctx, events.KindUpdated, owner, task.ID, map[string]interface{}{
			"tags": []string(task.Tags),
		})

		return TagOutput{
			TaskID: task.ID,
			Status: "updated",
			Title:  task.Title,
			Tags:   task.Tags,
		}, nil
	}
}

// AddTagTool returns the add_tag capability bound to owner.
func AddTagTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(AddTagName, addTagPrompt, makeTagHandler(deps, owner, storage.TagActionAdd))
}

// RemoveTagTool returns the remove_tag capability bound to owner.
func RemoveTagTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(RemoveTagName, removeTagPrompt, makeTagHandler(deps, owner, storage.TagActionRemove))
}
