package message

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chat-api/internal/domain/llm"
	"chat-api/internal/infrastructure/metrics"
	"chat-api/internal/infrastructure/observability"
	"chat-api/internal/utils/idgen"
	"chat-api/internal/utils/platformerrors"
)

const (
	publicIDPrefix = "msg"
	publicIDLength = 16

	// Retries for an append whose sequence position is taken by a
	// racing insert before ours lands.
	appendAttempts = 3

	maxContentLength = 32768
)

// FallbackReply is persisted as the AI turn when the responder fails.
// Exchanges always settle with an AI reply so that the user/AI
// alternation of the transcript is preserved.
const FallbackReply = "I could not generate a response this time. Please try again."

// AppendInput carries a new message for a conversation. FromAI marks
// an AI-authored append, which does not trigger a reply.
type AppendInput struct {
	ConversationID uint
	Content        string
	FromAI         bool
}

// EditInput rewrites the content of an existing user message. When
// Regenerate is set, every message after the edited one is discarded
// and a fresh AI reply is generated from the edited prefix.
type EditInput struct {
	PublicID   string
	Content    string
	Regenerate bool
}

// Service runs the message exchange: appends, edits with cascading
// regeneration, and transcript reads.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*Message, error)
	Edit(ctx context.Context, input EditInput) (*Message, error)
	GetMessage(ctx context.Context, publicID string) (*Message, error)
	Transcript(ctx context.Context, conversationID uint) ([]*Message, error)
	Search(ctx context.Context, conversationID uint, keyword string) ([]*Message, error)
	DeleteMessage(ctx context.Context, id uint) error
}

// Engine is the exchange orchestrator. The responder is never called
// while a database transaction is open; its result is folded back into
// the store afterwards, falling back to a fixed reply on failure.
type Engine struct {
	messages      Repository
	conversations Conversations
	history       *HistoryBuilder
	responder     llm.Responder
	timeout       time.Duration
	log           zerolog.Logger
}

// NewEngine creates the message exchange engine.
func NewEngine(
	messages Repository,
	conversations Conversations,
	history *HistoryBuilder,
	responder llm.Responder,
	timeout time.Duration,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		messages:      messages,
		conversations: conversations,
		history:       history,
		responder:     responder,
		timeout:       timeout,
		log:           log.With().Str("component", "message_engine").Logger(),
	}
}

// Append persists a message at the next sequence position. A
// user-authored append also produces an AI reply from the full history
// up to and including the new message. The returned message is the
// appended one, not the reply.
func (e *Engine) Append(ctx context.Context, input AppendInput) (*Message, error) {
	if err := validateContent(ctx, input.Content); err != nil {
		return nil, err
	}
	if err := e.conversations.Exists(ctx, input.ConversationID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "append message")
	}

	msg, err := e.persistNext(ctx, input.ConversationID, input.Content, input.FromAI)
	if err != nil {
		return nil, err
	}

	if !input.FromAI {
		history, err := e.history.Build(ctx, input.ConversationID, msg.SequenceNumber)
		if err != nil {
			return nil, err
		}

		reply := e.respond(ctx, msg.Content, history)
		if _, err := e.persistNext(ctx, input.ConversationID, reply, true); err != nil {
			return nil, err
		}
	}

	if err := e.conversations.Touch(ctx, input.ConversationID); err != nil {
		e.log.Warn().Err(err).Uint("conversation_id", input.ConversationID).Msg("touch conversation failed")
	}
	return msg, nil
}

// Edit rewrites a user message. AI-authored messages are immutable.
// With Regenerate set, the downstream set (every message after the
// edited one) is removed and a single fresh AI reply is inserted, as
// one atomic store operation. The responder call happens before that
// operation, against the prefix ending at the edited message, so no
// lock is held while waiting on the model.
func (e *Engine) Edit(ctx context.Context, input EditInput) (*Message, error) {
	if err := validateContent(ctx, input.Content); err != nil {
		return nil, err
	}

	msg, err := e.GetMessage(ctx, input.PublicID)
	if err != nil {
		return nil, err
	}
	if msg.IsFromAI {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"AI messages cannot be edited", nil, "3b9e6d2f-7c41-4e8a-b5d0-92f6a1c4e702")
	}

	msg.Content = input.Content
	if err := e.messages.Update(ctx, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update message")
	}

	if input.Regenerate {
		if err := e.regenerate(ctx, msg); err != nil {
			return nil, err
		}
	}

	if err := e.conversations.Touch(ctx, msg.ConversationID); err != nil {
		e.log.Warn().Err(err).Uint("conversation_id", msg.ConversationID).Msg("touch conversation failed")
	}
	return msg, nil
}

func (e *Engine) regenerate(ctx context.Context, edited *Message) error {
	ctx, span := observability.StartCascadeSpan(ctx, edited.PublicID, edited.SequenceNumber)
	defer span.End()

	downstream, err := e.messages.FindByConversationAfter(ctx, edited.ConversationID, edited.SequenceNumber, edited.ID)
	if err != nil {
		observability.RecordError(span, err)
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load downstream messages")
	}

	history, err := e.history.Build(ctx, edited.ConversationID, edited.SequenceNumber)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	reply := &Message{
		ConversationID: edited.ConversationID,
		Content:        e.respond(ctx, edited.Content, history),
		IsFromAI:       true,
		SequenceNumber: edited.SequenceNumber + 1,
	}
	reply.PublicID, err = idgen.GenerateSecureID(publicIDPrefix, publicIDLength)
	if err != nil {
		observability.RecordError(span, err)
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate message id")
	}

	if err := e.messages.ReplaceDownstream(ctx, edited.ConversationID, edited.SequenceNumber, edited.ID, reply); err != nil {
		observability.RecordError(span, err)
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "replace downstream messages")
	}

	metrics.RecordEditCascade(len(downstream))
	metrics.RecordMessageAppended(true)
	e.log.Info().
		Str("message_id", edited.PublicID).
		Int("downstream_removed", len(downstream)).
		Msg("edit cascade completed")
	return nil
}

func (e *Engine) GetMessage(ctx context.Context, publicID string) (*Message, error) {
	msg, err := e.messages.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get message")
	}
	return msg, nil
}

func (e *Engine) Transcript(ctx context.Context, conversationID uint) ([]*Message, error) {
	msgs, err := e.messages.FindByConversationOrdered(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load transcript")
	}
	return msgs, nil
}

func (e *Engine) Search(ctx context.Context, conversationID uint, keyword string) ([]*Message, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"search keyword is required", nil, "3b9e6d2f-7c41-4e8a-b5d0-92f6a1c4e703")
	}

	msgs, err := e.messages.SearchInConversation(ctx, conversationID, keyword)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "search messages")
	}
	return msgs, nil
}

func (e *Engine) DeleteMessage(ctx context.Context, id uint) error {
	if err := e.messages.Delete(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete message")
	}
	return nil
}

// persistNext writes content at the next free sequence position of the
// conversation. The store assigns the position (MAX+1) inside the
// insert's transaction, so deleted positions are never reused; a racing
// append on the same position surfaces as a Conflict and is retried.
func (e *Engine) persistNext(ctx context.Context, conversationID uint, content string, fromAI bool) (*Message, error) {
	publicID, err := idgen.GenerateSecureID(publicIDPrefix, publicIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate message id")
	}

	msg := &Message{
		PublicID:       publicID,
		ConversationID: conversationID,
		Content:        content,
		IsFromAI:       fromAI,
	}

	for attempt := 0; attempt < appendAttempts; attempt++ {
		err = e.messages.Create(ctx, msg)
		if err == nil {
			metrics.RecordMessageAppended(fromAI)
			return msg, nil
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create message")
		}
		msg.SequenceNumber = 0
		e.log.Warn().Uint("conversation_id", conversationID).Int("attempt", attempt+1).Msg("sequence position taken, retrying append")
	}

	return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create message")
}

// respond asks the responder for the AI turn. Failures never surface
// to the caller: the exchange settles with FallbackReply and the error
// is logged and counted.
func (e *Engine) respond(ctx context.Context, prompt string, history []llm.Turn) string {
	ctx, span := observability.StartResponderSpan(ctx, len(history))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.responder.Respond(ctx, prompt, history)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordResponderCall("error", elapsed)
		platformerrors.LogError(e.log, platformerrors.NewError(ctx,
			platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"responder call failed, using fallback reply", err, "3b9e6d2f-7c41-4e8a-b5d0-92f6a1c4e701"))
		return FallbackReply
	}

	metrics.RecordResponderCall("ok", elapsed)
	return text
}

func validateContent(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content is required", nil, "3b9e6d2f-7c41-4e8a-b5d0-92f6a1c4e704")
	}
	if len(content) > maxContentLength {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content is too long", nil, "3b9e6d2f-7c41-4e8a-b5d0-92f6a1c4e705")
	}
	return nil
}
