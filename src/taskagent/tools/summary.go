package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/elee1766/taskchat/src/storage"
)

// TaskSummary is the shape capabilities return for a task. It is a small
// projection of the stored record, suitable both for the next model turn and
// for direct human display.
type TaskSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	Recurrence  string   `json:"recurring,omitempty"`
}

func summarize(t *storage.Task) TaskSummary {
	s := TaskSummary{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		Tags:        t.Tags,
	}
	if t.DueDate != nil {
		s.DueDate = t.DueDate.UTC().Format(time.RFC3339)
	}
	if t.Recurrence != nil {
		s.Recurrence = *t.Recurrence
	}
	return s
}

// Summarize projects a stored task into its capability-facing shape.
func Summarize(t *storage.Task) TaskSummary {
	return summarize(t)
}

func summarizeAll(tasks []storage.Task) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	for i := range tasks {
		out[i] = summarize(&tasks[i])
	}
	return out
}

// FormatLine renders a summary as a single human-readable line. This is the
// fallback rendering used when no model is in the loop.
func (s TaskSummary) FormatLine() string {
	var b strings.Builder
	if s.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(s.Title)
	b.WriteString(" (" + s.Priority)
	if s.DueDate != "" {
		b.WriteString(", due " + s.DueDate)
	}
	if s.Recurrence != "" {
		b.WriteString(", repeats " + s.Recurrence)
	}
	b.WriteString(")")
	if len(s.Tags) > 0 {
		b.WriteString(" #" + strings.Join(s.Tags, " #"))
	}
	return b.String()
}

// parseDueDate parses an ISO 8601 timestamp supplied by the model.
func parseDueDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due_date %q: use ISO format like 2024-01-20T18:00:00Z", value)
	}
	return t.UTC(), nil
}
