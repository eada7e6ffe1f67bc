package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "chat-api/internal/domain/conversation"
	"chat-api/internal/infrastructure/database/entities"
	"chat-api/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e01",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a conversation by its internal ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %d", id),
				nil,
				"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e02",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e03",
		)
	}
	return entity.EtoD(), nil
}

// FindByPublicID fetches a conversation by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", publicID),
				nil,
				"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e04",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e05",
		)
	}

	return entity.EtoD(), nil
}

// FindByOwner lists the owner's conversations, most recently active first.
func (r *Repository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e06",
		)
	}

	return toDomainList(rows), nil
}

// FindForkedByOwner lists the owner's conversations that were forked
// from a share link.
func (r *Repository) FindForkedByOwner(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND shared_from IS NOT NULL", ownerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list forked conversations",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e07",
		)
	}

	return toDomainList(rows), nil
}

// FindByShareLink fetches a conversation by its share token.
func (r *Repository) FindByShareLink(ctx context.Context, token string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("share_link = ?", token).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"shared conversation not found",
				nil,
				"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e08",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch shared conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e09",
		)
	}

	return entity.EtoD(), nil
}

// SearchByNameOrContent lists the owner's conversations whose name or
// message content matches the keyword, most recently active first.
func (r *Repository) SearchByNameOrContent(ctx context.Context, ownerID, keyword string) ([]*domain.Conversation, error) {
	pattern := "%" + keyword + "%"

	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Where("conversations.owner_id = ?", ownerID).
		Where("conversations.name ILIKE ? OR messages.content ILIKE ?", pattern, pattern).
		Group("conversations.id").
		Order("conversations.updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to search conversations",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0a",
		)
	}

	return toDomainList(rows), nil
}

// Update persists the mutable conversation fields. Nil share fields
// are written through, clearing a revoked link.
func (r *Repository) Update(ctx context.Context, conv *domain.Conversation) error {
	updates := map[string]any{
		"name":             conv.Name,
		"is_public":        conv.IsPublic,
		"share_link":       conv.ShareLink,
		"share_expires_at": conv.ShareExpiresAt,
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"share token already in use",
				result.Error,
				"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0b",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation",
			result.Error,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0c",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", conv.ID),
			nil,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0d",
		)
	}

	return nil
}

// Delete removes the conversation and its messages.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&entities.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Conversation{}, id).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0e",
		)
	}
	return nil
}

// Exists reports whether the conversation is present. Satisfies the
// message engine's conversation view.
func (r *Repository) Exists(ctx context.Context, conversationID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conversationID).
		Count(&count).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e0f",
		)
	}
	if count == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", conversationID),
			nil,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e10",
		)
	}
	return nil
}

// Touch bumps the conversation's updated_at after message activity.
func (r *Repository) Touch(ctx context.Context, conversationID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("NOW()")).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to touch conversation",
			err,
			"6c1a9e4b-2d8f-4a73-b1e5-9f0c2d6a8e11",
		)
	}
	return nil
}

func toDomainList(rows []entities.Conversation) []*domain.Conversation {
	convs := make([]*domain.Conversation, len(rows))
	for i := range rows {
		convs[i] = rows[i].EtoD()
	}
	return convs
}
