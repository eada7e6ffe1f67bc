package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chat-api/internal/infrastructure/metrics"
	"chat-api/internal/utils/idgen"
	"chat-api/internal/utils/platformerrors"
)

const (
	publicIDPrefix   = "conv"
	publicIDLength   = 16
	shareTokenLength = 16

	// Attempts to mint a share token before giving up on unique
	// collisions. Collisions are essentially theoretical at 16 chars.
	shareTokenAttempts = 3

	maxNameLength = 256
)

// CreateInput carries the fields needed to start a conversation.
type CreateInput struct {
	OwnerID  string
	Name     string
	IsPublic bool
}

// UpdateInput carries the mutable conversation fields. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name     *string
	IsPublic *bool
}

// ShareInput configures a share link. A nil ExpiresAt keeps the link
// valid indefinitely; a non-nil value replaces any stored expiry.
type ShareInput struct {
	ExpiresAt *time.Time
}

// ForkInput identifies the shared conversation to copy into the
// caller's account. ConversationID must match the conversation behind
// the token; it guards against saving a link whose target was swapped.
type ForkInput struct {
	OwnerID        string
	Token          string
	ConversationID string
	NewName        *string
}

// Service manages the conversation lifecycle: creation, visibility,
// sharing and forking. Message exchange lives in the message domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Conversation, error)
	List(ctx context.Context, ownerID string) ([]*Conversation, error)
	ListForked(ctx context.Context, ownerID string) ([]*Conversation, error)
	Search(ctx context.Context, ownerID, keyword string) ([]*Conversation, error)
	GetReadable(ctx context.Context, callerID, publicID string) (*Conversation, error)
	GetReadableByID(ctx context.Context, callerID string, id uint) (*Conversation, error)
	GetOwned(ctx context.Context, callerID, publicID string) (*Conversation, error)
	GetOwnedByID(ctx context.Context, callerID string, id uint) (*Conversation, error)
	Update(ctx context.Context, callerID, publicID string, input UpdateInput) (*Conversation, error)
	Delete(ctx context.Context, callerID, publicID string) error
	Share(ctx context.Context, callerID, publicID string, input ShareInput) (string, error)
	RevokeShare(ctx context.Context, callerID, publicID string) error
	ResolveShareLink(ctx context.Context, token string) (*Conversation, error)
	Fork(ctx context.Context, input ForkInput) (*Conversation, error)
}

type service struct {
	repo     Repository
	messages MessageCopier
	log      zerolog.Logger
}

// NewService creates the conversation lifecycle service.
func NewService(repo Repository, messages MessageCopier, log zerolog.Logger) Service {
	return &service{
		repo:     repo,
		messages: messages,
		log:      log.With().Str("component", "conversation_service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Conversation, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation name is required", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e01")
	}
	if len(name) > maxNameLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation name is too long", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e02")
	}

	publicID, err := idgen.GenerateSecureID(publicIDPrefix, publicIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate conversation id")
	}

	conv := &Conversation{
		PublicID: publicID,
		OwnerID:  input.OwnerID,
		Name:     name,
		IsPublic: input.IsPublic,
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create conversation")
	}

	s.log.Info().Str("conversation_id", conv.PublicID).Str("owner_id", conv.OwnerID).Msg("conversation created")
	return conv, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]*Conversation, error) {
	convs, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list conversations")
	}
	return convs, nil
}

func (s *service) ListForked(ctx context.Context, ownerID string) ([]*Conversation, error) {
	convs, err := s.repo.FindForkedByOwner(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list forked conversations")
	}
	return convs, nil
}

func (s *service) Search(ctx context.Context, ownerID, keyword string) ([]*Conversation, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"search keyword is required", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e03")
	}

	convs, err := s.repo.SearchByNameOrContent(ctx, ownerID, keyword)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "search conversations")
	}
	return convs, nil
}

// GetReadable resolves a conversation the caller may read: either the
// caller owns it or it is flagged public.
func (s *service) GetReadable(ctx context.Context, callerID, publicID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get conversation")
	}
	if !conv.IsOwnedBy(callerID) && !conv.IsPublic {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"conversation is not accessible", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e04")
	}
	return conv, nil
}

// GetReadableByID is GetReadable keyed by the internal id.
func (s *service) GetReadableByID(ctx context.Context, callerID string, id uint) (*Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get conversation")
	}
	if !conv.IsOwnedBy(callerID) && !conv.IsPublic {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"conversation is not accessible", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e0d")
	}
	return conv, nil
}

// GetOwned resolves a conversation for mutation; only the owner passes.
func (s *service) GetOwned(ctx context.Context, callerID, publicID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get conversation")
	}
	if !conv.IsOwnedBy(callerID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"caller does not own this conversation", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e05")
	}
	return conv, nil
}

// GetOwnedByID is GetOwned keyed by the internal id. Message handlers
// use it after resolving a message to its parent conversation.
func (s *service) GetOwnedByID(ctx context.Context, callerID string, id uint) (*Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get conversation")
	}
	if !conv.IsOwnedBy(callerID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"caller does not own this conversation", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e06")
	}
	return conv, nil
}

func (s *service) Update(ctx context.Context, callerID, publicID string, input UpdateInput) (*Conversation, error) {
	conv, err := s.GetOwned(ctx, callerID, publicID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"conversation name is required", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e07")
		}
		if len(name) > maxNameLength {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"conversation name is too long", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e08")
		}
		conv.Name = name
	}
	if input.IsPublic != nil {
		conv.IsPublic = *input.IsPublic
	}

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update conversation")
	}
	return conv, nil
}

func (s *service) Delete(ctx context.Context, callerID, publicID string) error {
	conv, err := s.GetOwned(ctx, callerID, publicID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete conversation")
	}

	s.log.Info().Str("conversation_id", conv.PublicID).Msg("conversation deleted")
	return nil
}

// Share mints a share token for the conversation, or returns the
// existing one. A provided expiry always replaces the stored expiry,
// including when the token already exists.
func (s *service) Share(ctx context.Context, callerID, publicID string, input ShareInput) (string, error) {
	conv, err := s.GetOwned(ctx, callerID, publicID)
	if err != nil {
		return "", err
	}

	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"share expiry must be in the future", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e09")
	}

	if conv.IsShared() {
		if input.ExpiresAt != nil {
			conv.ShareExpiresAt = input.ExpiresAt
			if err := s.repo.Update(ctx, conv); err != nil {
				return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update share expiry")
			}
		}
		return *conv.ShareLink, nil
	}

	for attempt := 0; attempt < shareTokenAttempts; attempt++ {
		token, err := idgen.GenerateToken(shareTokenLength)
		if err != nil {
			return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate share token")
		}

		conv.ShareLink = &token
		conv.ShareExpiresAt = input.ExpiresAt
		err = s.repo.Update(ctx, conv)
		if err == nil {
			metrics.SharesIssuedTotal.Inc()
			s.log.Info().Str("conversation_id", conv.PublicID).Msg("share link issued")
			return token, nil
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "persist share token")
		}
		s.log.Warn().Str("conversation_id", conv.PublicID).Int("attempt", attempt+1).Msg("share token collision, retrying")
	}

	return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
		"could not mint a unique share token", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e0a")
}

func (s *service) RevokeShare(ctx context.Context, callerID, publicID string) error {
	conv, err := s.GetOwned(ctx, callerID, publicID)
	if err != nil {
		return err
	}

	conv.ShareLink = nil
	conv.ShareExpiresAt = nil
	if err := s.repo.Update(ctx, conv); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "revoke share link")
	}

	s.log.Info().Str("conversation_id", conv.PublicID).Msg("share link revoked")
	return nil
}

// ResolveShareLink looks up a conversation by share token. Expiry is
// enforced at read time: a lapsed link yields an Expired error without
// mutating the stored token.
func (s *service) ResolveShareLink(ctx context.Context, token string) (*Conversation, error) {
	conv, err := s.repo.FindByShareLink(ctx, token)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve share link")
	}
	if conv.ShareExpired(time.Now()) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExpired,
			"share link has expired", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e0b")
	}
	return conv, nil
}

// Fork deep-copies a shared conversation into the caller's account.
// The copy carries fresh identifiers and is fully independent of the
// source; only SharedFrom records the provenance.
func (s *service) Fork(ctx context.Context, input ForkInput) (*Conversation, error) {
	source, err := s.ResolveShareLink(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if source.PublicID != input.ConversationID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"share link does not match the requested conversation", nil, "8f0c2a4e-1d73-4b6a-9f2e-5a1c8d3b7e0c")
	}

	name := source.Name + " (Copy)"
	if input.NewName != nil && strings.TrimSpace(*input.NewName) != "" {
		name = strings.TrimSpace(*input.NewName)
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	publicID, err := idgen.GenerateSecureID(publicIDPrefix, publicIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate conversation id")
	}

	sharedFrom := source.PublicID
	fork := &Conversation{
		PublicID:   publicID,
		OwnerID:    input.OwnerID,
		Name:       name,
		SharedFrom: &sharedFrom,
	}
	if err := s.repo.Create(ctx, fork); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create forked conversation")
	}

	copied, err := s.messages.CopyAll(ctx, source.ID, fork.ID)
	if err != nil {
		// The fork must never be observable half-built. Remove the
		// empty shell before surfacing the failure.
		if delErr := s.repo.Delete(ctx, fork.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("conversation_id", fork.PublicID).Msg("remove failed fork")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "copy conversation messages")
	}

	metrics.ForksTotal.Inc()
	s.log.Info().
		Str("conversation_id", fork.PublicID).
		Str("source_id", source.PublicID).
		Int("messages_copied", copied).
		Msg("conversation forked")
	return fork, nil
}
