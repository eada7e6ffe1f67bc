package conversation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-api/internal/domain/conversation"
	"chat-api/internal/utils/platformerrors"
)

// memRepo is an in-memory conversation.Repository for testing.
type memRepo struct {
	mu     sync.Mutex
	nextID uint
	convs  map[uint]*conversation.Conversation

	// updateErrs is consumed one per Update call to simulate
	// persistence failures such as unique collisions.
	updateErrs []error
}

func newMemRepo() *memRepo {
	return &memRepo{convs: make(map[uint]*conversation.Conversation)}
}

func (r *memRepo) Create(_ context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	conv.ID = r.nextID
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	clone := *conv
	r.convs[conv.ID] = &clone
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uint) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, notFound(ctx)
	}
	clone := *conv
	return &clone, nil
}

func (r *memRepo) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		if conv.PublicID == publicID {
			clone := *conv
			return &clone, nil
		}
	}
	return nil, notFound(ctx)
}

func (r *memRepo) FindByOwner(_ context.Context, ownerID string) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*conversation.Conversation
	for _, conv := range r.convs {
		if conv.OwnerID == ownerID {
			clone := *conv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRepo) FindForkedByOwner(_ context.Context, ownerID string) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*conversation.Conversation
	for _, conv := range r.convs {
		if conv.OwnerID == ownerID && conv.SharedFrom != nil {
			clone := *conv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRepo) FindByShareLink(ctx context.Context, token string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		if conv.ShareLink != nil && *conv.ShareLink == token {
			clone := *conv
			return &clone, nil
		}
	}
	return nil, notFound(ctx)
}

func (r *memRepo) SearchByNameOrContent(_ context.Context, ownerID, keyword string) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*conversation.Conversation
	for _, conv := range r.convs {
		if conv.OwnerID == ownerID && strings.Contains(strings.ToLower(conv.Name), strings.ToLower(keyword)) {
			clone := *conv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRepo) Update(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updateErrs) > 0 {
		err := r.updateErrs[0]
		r.updateErrs = r.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := r.convs[conv.ID]; !ok {
		return notFound(ctx)
	}
	clone := *conv
	clone.UpdatedAt = time.Now()
	r.convs[conv.ID] = &clone
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[id]; !ok {
		return notFound(ctx)
	}
	delete(r.convs, id)
	return nil
}

func notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"conversation not found", nil, "")
}

func conflict(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
		"duplicate key", nil, "")
}

// mockCopier records fork copy requests.
type mockCopier struct {
	calls [][2]uint
	count int
	err   error
}

func (m *mockCopier) CopyAll(_ context.Context, sourceID, targetID uint) (int, error) {
	m.calls = append(m.calls, [2]uint{sourceID, targetID})
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func newService(repo *memRepo, copier *mockCopier) conversation.Service {
	return conversation.NewService(repo, copier, zerolog.Nop())
}

func mustCreate(t *testing.T, svc conversation.Service, ownerID, name string, public bool) *conversation.Conversation {
	t.Helper()
	conv, err := svc.Create(context.Background(), conversation.CreateInput{OwnerID: ownerID, Name: name, IsPublic: public})
	require.NoError(t, err)
	return conv
}

func TestCreate(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})

	conv := mustCreate(t, svc, "alice", "  Weekend plans  ", false)
	assert.Equal(t, "Weekend plans", conv.Name)
	assert.Equal(t, "alice", conv.OwnerID)
	assert.True(t, strings.HasPrefix(conv.PublicID, "conv_"))

	_, err := svc.Create(context.Background(), conversation.CreateInput{OwnerID: "alice", Name: "   "})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.Create(context.Background(), conversation.CreateInput{OwnerID: "alice", Name: strings.Repeat("x", 300)})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestAccessRules(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	private := mustCreate(t, svc, "alice", "Private", false)
	public := mustCreate(t, svc, "alice", "Public", true)

	// Owner reads both.
	_, err := svc.GetReadable(context.Background(), "alice", private.PublicID)
	require.NoError(t, err)

	// Anyone reads a public conversation.
	_, err = svc.GetReadable(context.Background(), "bob", public.PublicID)
	require.NoError(t, err)

	// A private conversation stays private.
	_, err = svc.GetReadable(context.Background(), "bob", private.PublicID)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))

	// Public visibility never grants write access.
	_, err = svc.GetOwned(context.Background(), "bob", public.PublicID)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestUpdate(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Draft", false)

	name := "Final"
	public := true
	updated, err := svc.Update(context.Background(), "alice", conv.PublicID, conversation.UpdateInput{Name: &name, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Name)
	assert.True(t, updated.IsPublic)

	_, err = svc.Update(context.Background(), "bob", conv.PublicID, conversation.UpdateInput{Name: &name})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestDelete(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo, &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Old thread", false)

	err := svc.Delete(context.Background(), "bob", conv.PublicID)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))

	require.NoError(t, svc.Delete(context.Background(), "alice", conv.PublicID))
	_, err = svc.GetOwned(context.Background(), "alice", conv.PublicID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestShare_Idempotent(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	first, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{})
	require.NoError(t, err)
	assert.Len(t, first, 16)

	second, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestShare_ExpiryReplaced(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	token, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	// Re-sharing with an expiry keeps the token and stores the expiry.
	expiry := time.Now().Add(time.Hour)
	again, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{ExpiresAt: &expiry})
	require.NoError(t, err)
	assert.Equal(t, token, again)

	stored, err := svc.GetOwned(context.Background(), "alice", conv.PublicID)
	require.NoError(t, err)
	require.NotNil(t, stored.ShareExpiresAt)
	assert.WithinDuration(t, expiry, *stored.ShareExpiresAt, time.Second)
}

func TestShare_PastExpiryRejected(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	past := time.Now().Add(-time.Minute)
	_, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{ExpiresAt: &past})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestShare_RetriesOnTokenCollision(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo, &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	repo.updateErrs = []error{conflict(context.Background())}
	token, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRevokeShare(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	token, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeShare(context.Background(), "alice", conv.PublicID))

	_, err = svc.ResolveShareLink(context.Background(), token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestResolveShareLink(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	conv := mustCreate(t, svc, "alice", "Shared thread", false)

	_, err := svc.ResolveShareLink(context.Background(), "nosuchtoken")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	expiry := time.Now().Add(50 * time.Millisecond)
	token, err := svc.Share(context.Background(), "alice", conv.PublicID, conversation.ShareInput{ExpiresAt: &expiry})
	require.NoError(t, err)

	resolved, err := svc.ResolveShareLink(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, conv.PublicID, resolved.PublicID)

	time.Sleep(60 * time.Millisecond)
	_, err = svc.ResolveShareLink(context.Background(), token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExpired))
}

func TestFork(t *testing.T) {
	repo := newMemRepo()
	copier := &mockCopier{count: 4}
	svc := newService(repo, copier)
	source := mustCreate(t, svc, "alice", "Recipes", false)

	token, err := svc.Share(context.Background(), "alice", source.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	fork, err := svc.Fork(context.Background(), conversation.ForkInput{
		OwnerID:        "bob",
		Token:          token,
		ConversationID: source.PublicID,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", fork.OwnerID)
	assert.Equal(t, "Recipes (Copy)", fork.Name)
	assert.NotEqual(t, source.PublicID, fork.PublicID)
	require.NotNil(t, fork.SharedFrom)
	assert.Equal(t, source.PublicID, *fork.SharedFrom)
	assert.False(t, fork.IsShared())

	require.Len(t, copier.calls, 1)
	assert.Equal(t, [2]uint{source.ID, fork.ID}, copier.calls[0])

	forks, err := svc.ListForked(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, forks, 1)
	assert.Equal(t, fork.PublicID, forks[0].PublicID)
}

func TestFork_CustomName(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	source := mustCreate(t, svc, "alice", "Recipes", false)
	token, err := svc.Share(context.Background(), "alice", source.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	name := "My recipe stash"
	fork, err := svc.Fork(context.Background(), conversation.ForkInput{
		OwnerID:        "bob",
		Token:          token,
		ConversationID: source.PublicID,
		NewName:        &name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, fork.Name)
}

func TestFork_TargetMismatch(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	source := mustCreate(t, svc, "alice", "Recipes", false)
	token, err := svc.Share(context.Background(), "alice", source.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	_, err = svc.Fork(context.Background(), conversation.ForkInput{
		OwnerID:        "bob",
		Token:          token,
		ConversationID: "conv_somethingelse",
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestFork_CopyFailureLeavesNoShell(t *testing.T) {
	repo := newMemRepo()
	copier := &mockCopier{err: errors.New("copy interrupted")}
	svc := newService(repo, copier)
	source := mustCreate(t, svc, "alice", "Recipes", false)
	token, err := svc.Share(context.Background(), "alice", source.PublicID, conversation.ShareInput{})
	require.NoError(t, err)

	_, err = svc.Fork(context.Background(), conversation.ForkInput{
		OwnerID:        "bob",
		Token:          token,
		ConversationID: source.PublicID,
	})
	require.Error(t, err)

	owned, err := svc.List(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestSearch_RequiresKeyword(t *testing.T) {
	svc := newService(newMemRepo(), &mockCopier{})
	_, err := svc.Search(context.Background(), "alice", "   ")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}
