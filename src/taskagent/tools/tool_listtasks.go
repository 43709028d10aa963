package tools

import (
	"context"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/storage"
)

// The model-facing listing tools default to a smaller page than the store's
// clamp so transcripts stay compact.
const defaultListLimit = 20

const (
	listTasksPrompt   = `View tasks with optional filters (status, priority, tags), keyword search, and sorting.`
	searchTasksPrompt = `Search tasks by keyword in the title (case-insensitive).`
	filterTasksPrompt = `Filter tasks by status, priority, or tags.`
	sortTasksPrompt   = `List tasks sorted by due_date, priority, title, or created_at.`
)

// ListTasksInput represents the parameters for list_tasks
type ListTasksInput struct {
	Status   string   `json:"status,omitempty" description:"Filter by status: all, pending, or completed"`
	Priority string   `json:"priority,omitempty" description:"Filter by priority: high, medium, or low"`
	Tags     []string `json:"tags,omitempty" description:"Filter by tags (any matching tag)"`
	Search   string   `json:"search,omitempty" description:"Search keyword in title"`
	SortBy   string   `json:"sort_by,omitempty" description:"Sort by: due_date, priority, title, or created_at"`
	Order    string   `json:"order,omitempty" description:"Sort order: asc or desc"`
	Limit    int      `json:"limit,omitempty" description:"Maximum number of tasks to return (default 20)"`
}

// ListTasksOutput represents the response from the listing tools
type ListTasksOutput struct {
	Tasks          []TaskSummary `json:"tasks" description:"Matching tasks"`
	Total          int           `json:"total" description:"Total matching tasks before pagination"`
	PendingCount   int           `json:"pending_count" description:"Pending tasks in the filtered set"`
	CompletedCount int           `json:"completed_count" description:"Completed tasks in the filtered set"`
}

// SearchTasksInput represents the parameters for search_tasks
type SearchTasksInput struct {
	Query string `json:"query" required:"true" description:"Search keyword"`
}

// FilterTasksInput represents the parameters for filter_tasks
type FilterTasksInput struct {
	Status   string   `json:"status,omitempty" description:"Filter by status: all, pending, or completed"`
	Priority string   `json:"priority,omitempty" description:"Filter by priority: high, medium, or low"`
	Tags     []string `json:"tags,omitempty" description:"Filter by tags (any matching tag)"`
}

// SortTasksInput represents the parameters for sort_tasks
type SortTasksInput struct {
	SortBy string `json:"sort_by" required:"true" description:"Sort by: due_date, priority, title, or created_at"`
	Order  string `json:"order,omitempty" description:"Sort order: asc or desc"`
}

func runQuery(ctx context.Context, deps Deps, owner string, p storage.QueryParams) (ListTasksOutput, error) {
	if p.Limit == 0 {
		p.Limit = defaultListLimit
	}
	result, err := deps.Tasks.Query(ctx, owner, p)
	if err != nil {
		return ListTasksOutput{}, err
	}
	return ListTasksOutput{
		Tasks:          summarizeAll(result.Tasks),
		Total:          result.Total,
		PendingCount:   result.PendingCount,
		CompletedCount: result.CompletedCount,
	}, nil
}

// ListTasksTool returns the list_tasks capability bound to owner.
func ListTasksTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(ListTasksName, listTasksPrompt,
		func(ctx context.Context, input ListTasksInput) (ListTasksOutput, error) {
			return runQuery(ctx, deps, owner, storage.QueryParams{
				Status:    input.Status,
				Priority:  input.Priority,
				Tags:      input.Tags,
				Search:    input.Search,
				SortField: input.SortBy,
				SortOrder: input.Order,
				Limit:     input.Limit,
			})
		})
}

// SearchTasksTool returns the search_tasks capability bound to owner.
func SearchTasksTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(SearchTasksName, searchTasksPrompt,
		func(ctx context.Context, input SearchTasksInput) (ListTasksOutput, error) {
			return runQuery(ctx, deps, owner, storage.QueryParams{
				Search: input.Query,
			})
		})
}

// FilterTasksTool returns the filter_tasks capability bound to owner.
func FilterTasksTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(FilterTasksName, filterTasksPrompt,
		func(ctx context.Context, input FilterTasksInput) (ListTasksOutput, error) {
			return runQuery(ctx, deps, owner, storage.QueryParams{
				Status:   input.Status,
				Priority: input.Priority,
				Tags:     input.Tags,
			})
		})
}

// SortTasksTool returns the sort_tasks capability bound to owner.
func SortTasksTool(deps Deps, owner string) (agent.Tool, error) {
	return agent.NewGenericTool(SortTasksName, sortTasksPrompt,
		func(ctx context.Context, input SortTasksInput) (ListTasksOutput, error) {
			return runQuery(ctx, deps, owner, storage.QueryParams{
				SortField: input.SortBy,
				SortOrder: input.Order,
			})
		})
}
