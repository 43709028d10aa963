package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/elee1766/taskchat/src/storage"
	"github.com/elee1766/taskchat/src/taskagent/tools"
)

// TasksCmd lists tasks directly against the store. It is the fallback when
// the model endpoint is unavailable.
type TasksCmd struct {
	Status   string   `help:"Filter by status (all, pending, completed)" default:"all"`
	Priority string   `help:"Filter by priority (high, medium, low)"`
	Tag      []string `help:"Filter by tag, repeatable"`
	Search   string   `short:"s" help:"Search in titles"`
	Sort     string   `help:"Sort by field (due_date, priority, title, created_at)"`
	Order    string   `help:"Sort order (asc, desc)" default:"asc"`
	Limit    int      `help:"Maximum number of tasks to show" default:"50"`
}

func (p *TasksCmd) Run(ctx *kong.Context, cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.tasks.Query(context.Background(), cli.User, storage.QueryParams{
		Status:    p.Status,
		Priority:  p.Priority,
		Tags:      p.Tag,
		Search:    p.Search,
		SortField: p.Sort,
		SortOrder: p.Order,
		Limit:     p.Limit,
	})
	if err != nil {
		return err
	}

	for i := range result.Tasks {
		fmt.Println(tools.Summarize(&result.Tasks[i]).FormatLine())
	}
	fmt.Printf("\n%d tasks (%d pending, %d completed)\n",
		result.Total, result.PendingCount, result.CompletedCount)
	return nil
}
