package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recurrence patterns. Each maps to a fixed period advance; there are no
// custom intervals.
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Task is a single todo item owned by exactly one user. The owner never
// changes after creation.
type Task struct {
	ID                 string          `json:"id" db:"id"`
	Owner              string          `json:"owner" db:"owner"`
	Title              string          `json:"title" db:"title"`
	Description        string          `json:"description" db:"description"`
	Completed          bool            `json:"completed" db:"completed"`
	Priority           string          `json:"priority" db:"priority"`
	Tags               JSONStringArray `json:"tags" db:"tags"`
	DueDate            *time.Time      `json:"due_date,omitempty" db:"due_date"`
	ReminderAt         *time.Time      `json:"reminder_at,omitempty" db:"reminder_at"`
	Recurrence         *string         `json:"recurrence,omitempty" db:"recurrence"`
	RecurrenceParentID *string         `json:"recurrence_parent_id,omitempty" db:"recurrence_parent_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
}

// Conversation is a chat thread owned by one user.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Owner     string    `json:"owner" db:"owner"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is a single turn entry in a conversation. Owner is duplicated from
// the conversation so isolation checks don't need a join.
type Message struct {
	ID             string             `json:"id" db:"id"`
	ConversationID string             `json:"conversation_id" db:"conversation_id"`
	Owner          string             `json:"owner" db:"owner"`
	Role           string             `json:"role" db:"role"`
	Content        string             `json:"content" db:"content"`
	ToolCalls      ToolInvocationList `json:"tool_calls,omitempty" db:"tool_calls"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// ToolInvocation records one capability execution inside an assistant turn.
// Failed executions are recorded too; the transcript sees failures as well as
// successes.
type ToolInvocation struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// JSONStringArray stores a string slice as a JSON column.
type JSONStringArray []string

// Scan implements the sql.Scanner interface for JSONStringArray
func (j *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*j = []string{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*j = []string{}
			return nil
		}
		return json.Unmarshal([]byte(v), j)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*j = []string{}
			return nil
		}
		return json.Unmarshal(v, j)
	default:
		return fmt.Errorf("cannot scan type %T into JSONStringArray", value)
	}
}

// Value implements the driver.Valuer interface for JSONStringArray
func (j JSONStringArray) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ToolInvocationList stores tool invocations as a JSON column.
type ToolInvocationList []ToolInvocation

// Scan implements the sql.Scanner interface for ToolInvocationList
func (l *ToolInvocationList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan type %T into ToolInvocationList", value)
	}
}

// Value implements the driver.Valuer interface for ToolInvocationList
func (l ToolInvocationList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// validPriority reports whether p is one of the priority enum values.
func validPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// validRecurrence reports whether r is one of the recurrence enum values.
func validRecurrence(r string) bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}
