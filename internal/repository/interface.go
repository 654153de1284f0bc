package repository

import (
	"context"
	"errors"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository defines the interface for chat message persistence.
type MessageRepository interface {
	// Insert persists a message; the store assigns ID and CreatedAt.
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	// ListByRoom retrieves messages newest-first with pagination.
	// An empty room lists across all rooms.
	ListByRoom(ctx context.Context, room string, page, pageSize int) ([]domain.ChatMessage, int, error)
	// Recent retrieves the newest messages across all rooms.
	Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error)
	// Delete removes a message by id.
	Delete(ctx context.Context, id int64) error
}
