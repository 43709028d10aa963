package chatservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/taskchat/src/agent"
	"github.com/elee1766/taskchat/src/aisdk"
	"github.com/elee1766/taskchat/src/storage"
	"github.com/elee1766/taskchat/src/taskagent"
	"github.com/elee1766/taskchat/src/taskagent/tools"
)

const (
	// DefaultMaxToolRounds is how many tool-calling rounds a single turn may use
	// before the model is forced to produce a final reply.
	DefaultMaxToolRounds = 5

	// DefaultModelRetries is how many times a failed model call is retried.
	DefaultModelRetries = 2

	// DefaultRetryDelay is the base delay between model retries.
	DefaultRetryDelay = time.Second

	// DefaultToolTimeout bounds a single tool execution.
	DefaultToolTimeout = 30 * time.Second
)

// modelFailureReply is sent to the user when the model could not be reached.
// The user message is still persisted so the turn is not lost.
const modelFailureReply = "Sorry, I couldn't reach the assistant service. Your message was saved, please try again."

// ceilingReply is used when the model hits the tool round ceiling without
// producing any final text.
const ceilingReply = "I've made the changes described above, but ran out of steps to summarize them. Ask me to list your tasks to see the current state."

// ServiceConfig carries the dependencies for a chat Service.
type ServiceConfig struct {
	Model         aisdk.ModelClient
	Conversations *storage.ConversationStore
	ToolDeps      tools.Deps
	Logger        *slog.Logger
	MaxToolRounds int
	ModelRetries  int
	RetryDelay    time.Duration
	ToolTimeout   time.Duration
}

// Service runs conversational turns: it replays history, lets the model call
// task tools, and persists the finished turn.
type Service struct {
	model         aisdk.ModelClient
	conversations *storage.ConversationStore
	toolDeps      tools.Deps
	logger        *slog.Logger
	maxToolRounds int
	modelRetries  int
	retryDelay    time.Duration
	toolTimeout   time.Duration
}

// NewService creates a chat service. Zero config fields get defaults.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		model:         cfg.Model,
		conversations: cfg.Conversations,
		toolDeps:      cfg.ToolDeps,
		logger:        cfg.Logger,
		maxToolRounds: cfg.MaxToolRounds,
		modelRetries:  cfg.ModelRetries,
		retryDelay:    cfg.RetryDelay,
		toolTimeout:   cfg.ToolTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxToolRounds <= 0 {
		s.maxToolRounds = DefaultMaxToolRounds
	}
	if s.modelRetries < 0 {
		s.modelRetries = DefaultModelRetries
	}
	if s.retryDelay <= 0 {
		s.retryDelay = DefaultRetryDelay
	}
	if s.toolTimeout <= 0 {
		s.toolTimeout = DefaultToolTimeout
	}
	return s
}

// SendMessageRequest is a single user turn.
type SendMessageRequest struct {
	Owner          string
	ConversationID string
	Content        string
}

// SendMessageResponse is the finished turn.
type SendMessageResponse struct {
	ConversationID  string                     `json:"conversation_id"`
	Reply           string                     `json:"reply"`
	ToolInvocations storage.ToolInvocationList `json:"tool_invocations,omitempty"`
}

// SendMessage runs one conversational turn. The turn is persisted atomically:
// either both the user message and the assistant reply are stored, or neither.
func (s *Service) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.resolveConversation(ctx, req.Owner, req.ConversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.conversations.Messages(ctx, req.Owner, conv.ID)
	if err != nil {
		return nil, err
	}

	msgs := make([]*aisdk.Message, 0, len(history)+2)
	msgs = append(msgs, &aisdk.Message{Role: "system", Content: taskagent.SystemPrompt})
	for _, m := range history {
		msgs = append(msgs, &aisdk.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, &aisdk.Message{Role: "user", Content: content})

	toolbox, err := tools.NewToolbox(s.toolDeps, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to build toolbox: %w", err)
	}
	chatTools := agent.ToChatTools(toolbox.Tools())

	reply, invocations := s.runModelLoop(ctx, msgs, toolbox, chatTools)

	if _, _, err := s.conversations.AppendTurn(ctx, req.Owner, conv.ID, storage.Turn{
		UserContent:      content,
		AssistantContent: reply,
		ToolCalls:        invocations,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist turn: %w", err)
	}

	return &SendMessageResponse{
		ConversationID:  conv.ID,
		Reply:           reply,
		ToolInvocations: invocations,
	}, nil
}

// ListConversations returns the owner's conversations, most recently active first.
func (s *Service) ListConversations(ctx context.Context, owner string) ([]storage.Conversation, error) {
	return s.conversations.List(ctx, owner)
}

// GetMessages returns the full transcript of a conversation.
func (s *Service) GetMessages(ctx context.Context, owner, conversationID string) ([]storage.Message, error) {
	return s.conversations.Messages(ctx, owner, conversationID)
}

func (s *Service) resolveConversation(ctx context.Context, owner, id string) (*storage.Conversation, error) {
	if id == "" {
		return s.conversations.Create(ctx, owner, "")
	}
	return s.conversations.Get(ctx, owner, id)
}

// runModelLoop drives the tool-calling loop for one turn. Tool failures are
// fed back to the model as tool results, never surfaced as turn errors. Model
// transport failures produce a synthetic reply so the turn still persists.
func (s *Service) runModelLoop(ctx context.Context, msgs []*aisdk.Message, toolbox *agent.Toolbox, chatTools []*aisdk.ChatTool) (string, storage.ToolInvocationList) {
	var invocations storage.ToolInvocationList

	for round := 0; ; round++ {
		creq := &aisdk.ChatCompletionRequest{Messages: msgs, Tools: chatTools}
		atCeiling := round >= s.maxToolRounds
		if atCeiling {
			// Force a final text reply once the round ceiling is reached. The
			// tools stay in the request: the API rejects tool_choice without them.
			creq.ToolChoice = "none"
		}

		resp, err := s.complete(ctx, creq)
		if err != nil {
			s.logger.Error("model call failed", "round", round, "error", err)
			return modelFailureReply, invocations
		}
		if len(resp.Choices) == 0 {
			s.logger.Error("model returned no choices", "round", round)
			return modelFailureReply, invocations
		}

		assistant := resp.Choices[0].Message
		if atCeiling || len(assistant.ToolCalls) == 0 {
			reply := strings.TrimSpace(assistant.Content)
			if reply == "" {
				reply = ceilingReply
			}
			return reply, invocations
		}

		msgs = append(msgs, &aisdk.Message{
			Role:      "assistant",
			Content:   assistant.Content,
			ToolCalls: assistant.ToolCalls,
		})

		for i := range assistant.ToolCalls {
			call := assistant.ToolCalls[i]
			inv, result := s.executeTool(ctx, toolbox, &call)
			invocations = append(invocations, inv)
			msgs = append(msgs, result)
		}
	}
}

// executeTool runs one tool call under a bounded timeout and returns both the
// persistence record and the message fed back to the model. A timed-out tool
// is a tool error like any other, not a turn failure.
func (s *Service) executeTool(ctx context.Context, toolbox *agent.Toolbox, call *aisdk.ToolCall) (storage.ToolInvocation, *aisdk.Message) {
	inv := storage.ToolInvocation{
		Tool:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}

	tctx, cancel := context.WithTimeout(ctx, s.toolTimeout)
	defer cancel()

	var output string
	result, err := toolbox.ExecuteTool(tctx, call)
	timedOut := errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	switch {
	case timedOut && (err != nil || result == nil || result.IsError):
		inv.Error = fmt.Sprintf("tool timed out after %s", s.toolTimeout)
		output = fmt.Sprintf("Error: %s", inv.Error)
		s.logger.Warn("tool execution timed out", "tool", call.Function.Name, "timeout", s.toolTimeout)
	case err != nil:
		inv.Error = err.Error()
		output = fmt.Sprintf("Error: %s", err.Error())
		s.logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err)
	case result != nil && result.IsError:
		output = string(result.Content)
		inv.Error = output
		s.logger.Warn("tool reported error", "tool", call.Function.Name, "output", output)
	case result != nil:
		output = string(result.Content)
		inv.Result = json.RawMessage(result.Content)
	}

	return inv, &aisdk.Message{
		Role:       "tool",
		Content:    output,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}
}

// complete calls the model with bounded retries.
func (s *Service) complete(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= s.modelRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			}
		}
		resp, err := s.model.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		s.logger.Warn("model call attempt failed", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, lastErr)
}
