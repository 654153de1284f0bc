package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Insert persists a message and copies back the store-assigned fields.
func (r *GormMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	l := log.Ctx(ctx)

	model := domain.MessageToModel(msg)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoom, msg.Room).Msg("failed to insert chat message")
		return result.Error
	}

	msg.ID = model.ID
	msg.CreatedAt = model.CreatedAt
	l.Debug().Int64("message_id", msg.ID).Str(log.FieldRoom, msg.Room).Msg("chat message inserted")
	return nil
}

// ListByRoom retrieves messages newest-first with pagination.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, room string, page, pageSize int) ([]domain.ChatMessage, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.MessageModel{})
	if room != "" {
		query = query.Where("room = ?", room)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count chat messages")
		return nil, 0, err
	}

	var models []domain.MessageModel
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list chat messages")
		return nil, 0, err
	}

	messages := make([]domain.ChatMessage, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}

	return messages, int(total), nil
}

// Recent retrieves the newest messages across all rooms.
func (r *GormMessageRepository) Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	l := log.Ctx(ctx)

	if limit < 1 {
		limit = 10
	}

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to load recent chat messages")
		return nil, result.Error
	}

	messages := make([]domain.ChatMessage, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}

	return messages, nil
}

// Delete removes a message by id.
func (r *GormMessageRepository) Delete(ctx context.Context, id int64) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Delete(&domain.MessageModel{}, id)
	if result.Error != nil {
		l.Error().Err(result.Error).Int64("message_id", id).Msg("failed to delete chat message")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	l.Debug().Int64("message_id", id).Msg("chat message deleted")
	return nil
}
