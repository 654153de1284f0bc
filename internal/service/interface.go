package service

import (
	"context"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/hub"
)

// ChatService handles the realtime chat protocol for connected clients.
type ChatService interface {
	HandleConnect(ctx context.Context, c *hub.Client) error
	HandleJoinRoom(ctx context.Context, c *hub.Client, room string) error
	SendMessage(ctx context.Context, c *hub.Client, event *domain.SendMessageEvent) error
	HandleDisconnect(ctx context.Context, c *hub.Client) error
}

// HistoryService serves persisted chat history and moderation.
type HistoryService interface {
	RoomHistory(ctx context.Context, room string, page, pageSize int) (*domain.HistoryResponse, error)
	ListMessages(ctx context.Context, room string, page, pageSize int) (*domain.HistoryResponse, error)
	RecentMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error)
	DeleteMessage(ctx context.Context, id int64) error
}
