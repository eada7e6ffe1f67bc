package message

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "chat-api/internal/domain/message"
	"chat-api/internal/infrastructure/database/entities"
	"chat-api/internal/utils/idgen"
	"chat-api/internal/utils/platformerrors"
)

// Repository persists messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a message repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the message record. A zero SequenceNumber is assigned
// MAX(sequence_number)+1 for the conversation inside the insert's
// transaction, so deleted positions are never reused. A racing insert
// that lands on the same position trips the unique
// (conversation_id, sequence_number) index and surfaces as a Conflict
// for the caller to retry.
func (r *Repository) Create(ctx context.Context, msg *domain.Message) error {
	entity := entities.NewSchemaMessage(msg)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entity.SequenceNumber == 0 {
			var next int
			if err := tx.
				Model(&entities.Message{}).
				Where("conversation_id = ?", entity.ConversationID).
				Select("COALESCE(MAX(sequence_number), 0) + 1").
				Scan(&next).Error; err != nil {
				return err
			}
			entity.SequenceNumber = next
		}
		return tx.Create(entity).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"message sequence position already taken",
				err,
				"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a12",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create message",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a01",
		)
	}

	msg.ID = entity.ID
	msg.SequenceNumber = entity.SequenceNumber
	msg.CreatedAt = entity.CreatedAt
	msg.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a message by its internal ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	var entity entities.Message
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("message not found: %d", id),
				nil,
				"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a02",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch message",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a03",
		)
	}
	return entity.EtoD(), nil
}

// FindByPublicID fetches a message by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Message, error) {
	var entity entities.Message
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("message not found: %s", publicID),
				nil,
				"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a04",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch message",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a05",
		)
	}
	return entity.EtoD(), nil
}

// FindByConversationOrdered returns the conversation transcript ordered
// by sequence number.
func (r *Repository) FindByConversationOrdered(ctx context.Context, conversationID uint) ([]*domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a06",
		)
	}
	return toDomainList(rows), nil
}

// FindByConversationAfter returns the messages strictly after the
// given sequence number, excluding excludeID.
func (r *Repository) FindByConversationAfter(ctx context.Context, conversationID uint, afterSequence int, excludeID uint) ([]*domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND sequence_number > ? AND id <> ?", conversationID, afterSequence, excludeID).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load downstream messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a07",
		)
	}
	return toDomainList(rows), nil
}

// Update persists the message content.
func (r *Repository) Update(ctx context.Context, msg *domain.Message) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", msg.ID).
		Update("content", msg.Content)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update message",
			result.Error,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a09",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("message not found: %d", msg.ID),
			nil,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0a",
		)
	}
	return nil
}

// Delete removes a single message.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Message{}, id)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete message",
			result.Error,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0b",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("message not found: %d", id),
			nil,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0c",
		)
	}
	return nil
}

// ReplaceDownstream deletes every message after afterSequence (except
// excludeID) and inserts reply, as a single transaction. Either both
// effects land or neither does.
func (r *Repository) ReplaceDownstream(ctx context.Context, conversationID uint, afterSequence int, excludeID uint, reply *domain.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("conversation_id = ? AND sequence_number > ? AND id <> ?", conversationID, afterSequence, excludeID).
			Delete(&entities.Message{}).Error; err != nil {
			return err
		}

		entity := entities.NewSchemaMessage(reply)
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		reply.ID = entity.ID
		reply.CreatedAt = entity.CreatedAt
		reply.UpdatedAt = entity.UpdatedAt
		return nil
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to replace downstream messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0d",
		)
	}
	return nil
}

// SearchInConversation returns messages whose content matches the
// keyword, in transcript order.
func (r *Repository) SearchInConversation(ctx context.Context, conversationID uint, keyword string) ([]*domain.Message, error) {
	pattern := "%" + keyword + "%"

	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND content ILIKE ?", conversationID, pattern).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to search messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0e",
		)
	}
	return toDomainList(rows), nil
}

// CopyAll duplicates the source transcript into the target
// conversation with fresh public IDs and renumbered sequences.
// Satisfies the fork flow's message copier view.
func (r *Repository) CopyAll(ctx context.Context, sourceConversationID, targetConversationID uint) (int, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", sourceConversationID).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load source messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a0f",
		)
	}

	copies := make([]entities.Message, len(rows))
	for i, row := range rows {
		publicID, err := idgen.GenerateSecureID("msg", 16)
		if err != nil {
			return 0, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInternal,
				"failed to generate message id",
				err,
				"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a10",
			)
		}
		copies[i] = entities.Message{
			PublicID:       publicID,
			ConversationID: targetConversationID,
			Content:        row.Content,
			IsFromAI:       row.IsFromAI,
			SequenceNumber: i + 1,
		}
	}

	if len(copies) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Create(&copies).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to copy messages",
			err,
			"9d4b7f2a-5e18-4c6d-a3f9-1b8e0c5d7a11",
		)
	}
	return len(copies), nil
}

func toDomainList(rows []entities.Message) []*domain.Message {
	msgs := make([]*domain.Message, len(rows))
	for i := range rows {
		msgs[i] = rows[i].EtoD()
	}
	return msgs
}
