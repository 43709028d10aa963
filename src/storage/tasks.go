package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// DefaultReminderOffset is how long before the due date a reminder fires when
// the caller does not specify one.
const DefaultReminderOffset = time.Hour

const taskColumns = "id, owner, title, description, completed, priority, tags, due_date, reminder_at, recurrence, recurrence_parent_id, created_at, updated_at"

// TaskStore owns the tasks table and the domain rules over it. All operations
// are scoped to an owner; a task belonging to someone else is
// indistinguishable from a missing one.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskStore creates a task store on top of an open database.
func NewTaskStore(db *DB, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db.DB(),
		logger: logger.With("component", "task_store"),
	}
}

// CreateTaskParams are the caller-supplied fields for a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    string
	Tags        []string
	DueDate     *time.Time
	Recurrence  *string
	// ReminderOffset is subtracted from the due date to compute the reminder
	// time. Zero means DefaultReminderOffset. Ignored without a due date.
	ReminderOffset time.Duration
}

// Create validates and persists a new task, returning the stored record.
func (s *TaskStore) Create(ctx context.Context, owner string, p CreateTaskParams) (*Task, error) {
	title, err := validateTitle(p.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(p.Description)
	if err != nil {
		return nil, err
	}
	priority := p.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !validPriority(priority) {
		return nil, &ValidationError{Field: "priority", Message: "must be high, medium, or low"}
	}
	if p.Recurrence != nil && !validRecurrence(*p.Recurrence) {
		return nil, &ValidationError{Field: "recurrence", Message: "must be daily, weekly, or monthly"}
	}
	tags, err := validateTags(p.Tags)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:          uuid.New().String(),
		Owner:       owner,
		Title:       title,
		Description: description,
		Priority:    priority,
		Tags:        tags,
		DueDate:     p.DueDate,
		Recurrence:  p.Recurrence,
		CreatedAt:   time.Now().UTC(),
	}
	if p.DueDate != nil {
		offset := p.ReminderOffset
		if offset == 0 {
			offset = DefaultReminderOffset
		}
		reminder := p.DueDate.Add(-offset)
		task.ReminderAt = &reminder
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		task.ID, task.Owner, task.Title, task.Description, task.Completed, task.Priority,
		task.Tags, task.DueDate, task.ReminderAt, task.Recurrence, task.RecurrenceParentID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	s.logger.Debug("task created", "task_id", task.ID, "owner", owner)
	return task, nil
}

// Get retrieves a task by id scoped to owner.
func (s *TaskStore) Get(ctx context.Context, owner, id string) (*Task, error) {
	return getTask(ctx, s.db, owner, id)
}

func getTask(ctx context.Context, db sqlscan.Querier, owner, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner = ?`
	var t Task
	err := sqlscan.Get(ctx, db, &t, query, id, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &t, nil
}

// Task statuses accepted by Query.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Sort fields accepted by Query.
const (
	SortDueDate   = "due_date"
	SortPriority  = "priority"
	SortTitle     = "title"
	SortCreatedAt = "created_at"
)

// QueryParams filter, sort, and paginate a task listing.
type QueryParams struct {
	Status    string   // all, pending, completed; empty means all
	Priority  string   // optional priority filter
	Tags      []string // tasks whose tag set intersects this set
	Search    string   // case-insensitive title substring
	SortField string   // due_date, priority, title, created_at
	SortOrder string   // asc or desc; default desc
	Limit     int      // clamped to [1,100]; zero means 50
	Offset    int      // negative treated as zero
}

// QueryResult is a page of tasks plus counts computed over the whole filtered
// set before pagination.
type QueryResult struct {
	Tasks          []Task
	Total          int
	PendingCount   int
	CompletedCount int
}

// Query lists an owner's tasks with filtering, search, sorting, and
// pagination.
func (s *TaskStore) Query(ctx context.Context, owner string, p QueryParams) (*QueryResult, error) {
	where := []string{"owner = ?"}
	args := []interface{}{owner}

	switch p.Status {
	case "", StatusAll:
	case StatusPending:
		where = append(where, "completed = 0")
	case StatusCompleted:
		where = append(where, "completed = 1")
	default:
		return nil, &ValidationError{Field: "status", Message: "must be all, pending, or completed"}
	}

	if p.Priority != "" {
		if !validPriority(p.Priority) {
			return nil, &ValidationError{Field: "priority", Message: "must be high, medium, or low"}
		}
		where = append(where, "priority = ?")
		args = append(args, p.Priority)
	}

	if len(p.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(p.Tags)), ", ")
		where = append(where, "EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value IN ("+placeholders+"))")
		for _, tag := range p.Tags {
			args = append(args, tag)
		}
	}

	if strings.TrimSpace(p.Search) != "" {
		where = append(where, "instr(lower(title), lower(?)) > 0")
		args = append(args, strings.TrimSpace(p.Search))
	}

	orderBy, err := buildOrderBy(p.SortField, p.SortOrder)
	if err != nil {
		return nil, err
	}

	limit := p.Limit
	if limit == 0 {
		limit = 50
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := `SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN completed = 0 THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0) AS completed
		FROM tasks WHERE ` + whereClause
	var total, pending, completed int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total, &pending, &completed); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + whereClause +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var tasks []Task
	if err := sqlscan.Select(ctx, s.db, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	return &QueryResult{
		Tasks:          tasks,
		Total:          total,
		PendingCount:   pending,
		CompletedCount: completed,
	}, nil
}

// buildOrderBy maps a sort field/order pair onto a SQL ORDER BY clause. Ties
// always break by creation order ascending (rowid follows insert order).
func buildOrderBy(field, order string) (string, error) {
	switch order {
	case "", "desc":
		order = "DESC"
	case "asc":
		order = "ASC"
	default:
		return "", &ValidationError{Field: "sort_order", Message: "must be asc or desc"}
	}

	switch field {
	case SortDueDate:
		// Tasks without a due date sort last either direction.
		return "due_date IS NULL, due_date " + order + ", rowid ASC", nil
	case SortPriority:
		rank := "CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END"
		// Descending means high first.
		if order == "DESC" {
			return rank + " ASC, rowid ASC", nil
		}
		return rank + " DESC, rowid ASC", nil
	case SortTitle:
		return "lower(title) " + order + ", rowid ASC", nil
	case "", SortCreatedAt:
		return "created_at " + order + ", rowid ASC", nil
	default:
		return "", &ValidationError{Field: "sort_field", Message: "must be due_date, priority, title, or created_at"}
	}
}

// UpdateTaskParams carries a partial update; nil pointers leave fields
// untouched. Clearing an optional field is explicit.
type UpdateTaskParams struct {
	Title           string
	Description     *string
	Completed       *bool
	Priority        string
	Tags            *[]string
	DueDate         *time.Time
	ClearDueDate    bool
	Recurrence      string
	ClearRecurrence bool
}

// Update applies the provided fields to a task. The last-modified timestamp
// only moves when something actually changed; a no-op update still succeeds
// and returns the current record.
func (s *TaskStore) Update(ctx context.Context, owner, id string, p UpdateTaskParams) (*Task, error) {
	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	changed := false

	if p.Title != "" {
		title, err := validateTitle(p.Title)
		if err != nil {
			return nil, err
		}
		if title != task.Title {
			task.Title = title
			changed = true
		}
	}
	if p.Description != nil {
		description, err := validateDescription(*p.Description)
		if err != nil {
			return nil, err
		}
		if description != task.Description {
			task.Description = description
			changed = true
		}
	}
	if p.Completed != nil && *p.Completed != task.Completed {
		task.Completed = *p.Completed
		changed = true
	}
	if p.Priority != "" {
		if !validPriority(p.Priority) {
			return nil, &ValidationError{Field: "priority", Message: "must be high, medium, or low"}
		}
		if p.Priority != task.Priority {
			task.Priority = p.Priority
			changed = true
		}
	}
	if p.Tags != nil {
		tags, err := validateTags(*p.Tags)
		if err != nil {
			return nil, err
		}
		if !equalStrings(tags, task.Tags) {
			task.Tags = tags
			changed = true
		}
	}
	if p.ClearDueDate {
		if task.DueDate != nil {
			task.DueDate = nil
			task.ReminderAt = nil
			changed = true
		}
	} else if p.DueDate != nil {
		if task.DueDate == nil || !task.DueDate.Equal(*p.DueDate) {
			due := *p.DueDate
			reminder := due.Add(-DefaultReminderOffset)
			task.DueDate = &due
			task.ReminderAt = &reminder
			changed = true
		}
	}
	if p.ClearRecurrence {
		if task.Recurrence != nil {
			task.Recurrence = nil
			changed = true
		}
	} else if p.Recurrence != "" {
		if !validRecurrence(p.Recurrence) {
			return nil, &ValidationError{Field: "recurrence", Message: "must be daily, weekly, or monthly"}
		}
		if task.Recurrence == nil || *task.Recurrence != p.Recurrence {
			recurrence := p.Recurrence
			task.Recurrence = &recurrence
			changed = true
		}
	}

	if !changed {
		return task, nil
	}

	now := time.Now().UTC()
	task.UpdatedAt = &now
	if err := s.persist(ctx, s.db, task); err != nil {
		return nil, err
	}

	s.logger.Debug("task updated", "task_id", task.ID, "owner", owner)
	return task, nil
}

// ToggleResult is the outcome of toggling completion. Spawned is the next
// occurrence created when a recurring task was completed, nil otherwise.
type ToggleResult struct {
	Task    *Task
	Spawned *Task
}

// Toggle flips a task's completion flag. Completing a recurring task spawns
// its next occurrence in the same transaction: either both the toggle and the
// new task persist, or neither does. Un-completing never recalls an already
// spawned occurrence.
func (s *TaskStore) Toggle(ctx context.Context, owner, id string) (*ToggleResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := getTask(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task.Completed = !task.Completed
	task.UpdatedAt = &now
	if err := s.persist(ctx, tx, task); err != nil {
		return nil, err
	}

	result := &ToggleResult{Task: task}

	if task.Completed && task.Recurrence != nil {
		base := now
		if task.DueDate != nil {
			base = *task.DueDate
		}
		nextDue := NextDueDate(base, *task.Recurrence)
		reminder := nextDue.Add(-DefaultReminderOffset)
		recurrence := *task.Recurrence
		parentID := task.ID

		next := &Task{
			ID:                 uuid.New().String(),
			Owner:              task.Owner,
			Title:              task.Title,
			Description:        task.Description,
			Priority:           task.Priority,
			Tags:               task.Tags,
			DueDate:            &nextDue,
			ReminderAt:         &reminder,
			Recurrence:         &recurrence,
			RecurrenceParentID: &parentID,
			CreatedAt:          now,
		}
		query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, query,
			next.ID, next.Owner, next.Title, next.Description, next.Completed, next.Priority,
			next.Tags, next.DueDate, next.ReminderAt, next.Recurrence, next.RecurrenceParentID,
			next.CreatedAt, next.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert next occurrence: %w", err)
		}
		result.Spawned = next
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit toggle: %w", err)
	}

	s.logger.Debug("task toggled", "task_id", task.ID, "completed", task.Completed, "spawned", result.Spawned != nil)
	return result, nil
}

// Delete removes a task permanently. It reports whether a row was removed.
func (s *TaskStore) Delete(ctx context.Context, owner, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Tag actions accepted by SetTags.
const (
	TagActionAdd     = "add"
	TagActionRemove  = "remove"
	TagActionReplace = "replace"
)

// SetTags mutates a task's tag set: add unions, remove subtracts, replace
// overwrites. Tags are case-sensitive; empty strings are rejected.
func (s *TaskStore) SetTags(ctx context.Context, owner, id, action string, tags []string) (*Task, error) {
	validated, err := validateTags(tags)
	if err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	current := append([]string(nil), task.Tags...)
	switch action {
	case TagActionAdd:
		for _, tag := range validated {
			if !containsString(current, tag) {
				current = append(current, tag)
			}
		}
	case TagActionRemove:
		kept := current[:0]
		for _, tag := range current {
			if !containsString(validated, tag) {
				kept = append(kept, tag)
			}
		}
		current = kept
	case TagActionReplace:
		current = validated
	default:
		return nil, &ValidationError{Field: "action", Message: "must be add, remove, or replace"}
	}

	if equalStrings(current, task.Tags) {
		return task, nil
	}

	now := time.Now().UTC()
	task.Tags = current
	task.UpdatedAt = &now
	if err := s.persist(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetDueDate sets or clears a task's due date, recomputing the reminder.
// A nil due clears both. offset zero means DefaultReminderOffset.
func (s *TaskStore) SetDueDate(ctx context.Context, owner, id string, due *time.Time, offset time.Duration) (*Task, error) {
	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if due == nil {
		task.DueDate = nil
		task.ReminderAt = nil
	} else {
		if offset == 0 {
			offset = DefaultReminderOffset
		}
		d := *due
		reminder := d.Add(-offset)
		task.DueDate = &d
		task.ReminderAt = &reminder
	}

	now := time.Now().UTC()
	task.UpdatedAt = &now
	if err := s.persist(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *TaskStore) persist(ctx context.Context, db execer, task *Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?, tags = ?,
		due_date = ?, reminder_at = ?, recurrence = ?, updated_at = ?
		WHERE id = ? AND owner = ?`
	_, err := db.ExecContext(ctx, query,
		task.Title, task.Description, task.Completed, task.Priority, task.Tags,
		task.DueDate, task.ReminderAt, task.Recurrence, task.UpdatedAt,
		task.ID, task.Owner,
	)
	if err != nil {
		return fmt.Errorf("failed to persist task: %w", err)
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(title) > 200 {
		return "", &ValidationError{Field: "title", Message: "must be 200 characters or less"}
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len(description) > 1000 {
		return "", &ValidationError{Field: "description", Message: "must be 1000 characters or less"}
	}
	return description, nil
}

// validateTags rejects empty strings and drops duplicates, keeping first
// occurrence order.
func validateTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			return nil, &ValidationError{Field: "tags", Message: "tags cannot be empty strings"}
		}
		if containsString(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
