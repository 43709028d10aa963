package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// Conversation titles derived from the first user message are truncated to
// this many characters.
const maxDerivedTitleLen = 100

// ConversationStore owns the conversations and messages tables.
type ConversationStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConversationStore creates a conversation store on top of an open database.
func NewConversationStore(db *DB, logger *slog.Logger) *ConversationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationStore{
		db:     db.DB(),
		logger: logger.With("component", "conversation_store"),
	}
}

// Create persists a new, empty conversation for owner.
func (s *ConversationStore) Create(ctx context.Context, owner, title string) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New().String(),
		Owner:     owner,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO conversations (id, owner, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, conv.ID, conv.Owner, conv.Title, conv.CreatedAt, conv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}
	return conv, nil
}

// Get retrieves a conversation by id scoped to owner.
func (s *ConversationStore) Get(ctx context.Context, owner, id string) (*Conversation, error) {
	query := `SELECT id, owner, title, created_at, updated_at FROM conversations WHERE id = ? AND owner = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, s.db, &conv, query, id, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &conv, nil
}

// List returns an owner's conversations, most recently active first.
func (s *ConversationStore) List(ctx context.Context, owner string) ([]Conversation, error) {
	query := `SELECT id, owner, title, created_at, updated_at FROM conversations WHERE owner = ? ORDER BY updated_at DESC, rowid DESC`
	var convs []Conversation
	if err := sqlscan.Select(ctx, s.db, &convs, query, owner); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Messages returns a conversation's messages in turn order. The ownership
// check fails exactly like a missing conversation.
func (s *ConversationStore) Messages(ctx context.Context, owner, conversationID string) ([]Message, error) {
	if _, err := s.Get(ctx, owner, conversationID); err != nil {
		return nil, err
	}

	query := `SELECT id, conversation_id, owner, role, content, tool_calls, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`
	var messages []Message
	if err := sqlscan.Select(ctx, s.db, &messages, query, conversationID); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// Turn is one complete user/assistant exchange to be persisted atomically.
type Turn struct {
	UserContent      string
	AssistantContent string
	ToolCalls        ToolInvocationList
}

// AppendTurn persists a user message and the assistant reply in a single
// transaction, bumps the conversation's last-activity timestamp, and derives
// a title from the user message when the conversation has none. The service
// holds no memory of the exchange after this returns.
func (s *ConversationStore) AppendTurn(ctx context.Context, owner, conversationID string, turn Turn) (*Message, *Message, error) {
	conv, err := s.Get(ctx, owner, conversationID)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	userMsg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Owner:          owner,
		Role:           "user",
		Content:        turn.UserContent,
		CreatedAt:      now,
	}
	assistantMsg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Owner:          owner,
		Role:           "assistant",
		Content:        turn.AssistantContent,
		ToolCalls:      turn.ToolCalls,
		CreatedAt:      now,
	}

	insert := `INSERT INTO messages (id, conversation_id, owner, role, content, tool_calls, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, msg := range []*Message{userMsg, assistantMsg} {
		if _, err := tx.ExecContext(ctx, insert, msg.ID, msg.ConversationID, msg.Owner, msg.Role, msg.Content, msg.ToolCalls, msg.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to insert message: %w", err)
		}
	}

	title := conv.Title
	if title == "" {
		title = deriveTitle(turn.UserContent)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`, title, now, conversationID); err != nil {
		return nil, nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit turn: %w", err)
	}

	s.logger.Debug("turn persisted", "conversation_id", conversationID, "tool_calls", len(turn.ToolCalls))
	return userMsg, assistantMsg, nil
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > maxDerivedTitleLen {
		return string(runes[:maxDerivedTitleLen])
	}
	return content
}
