package domain

import (
	"time"
)

// DefaultRoom is used when an inbound payload carries no room name.
const DefaultRoom = "general"

// ChatMessage is a persisted chat message. ID and CreatedAt are assigned
// by the store on insert and must not be set by callers.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId,omitempty"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageModel is the GORM model for the chat_messages table.
type MessageModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    *int64    `gorm:"index"`
	Username  string    `gorm:"type:varchar(50);not null"`
	Message   string    `gorm:"type:text;not null"`
	Room      string    `gorm:"type:varchar(50);index;not null;default:'general'"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts MessageModel to a domain ChatMessage.
func (m *MessageModel) ToDomain() *ChatMessage {
	return &ChatMessage{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Message:   m.Message,
		Room:      m.Room,
		CreatedAt: m.CreatedAt,
	}
}

// MessageToModel converts a domain ChatMessage to its GORM model.
func MessageToModel(msg *ChatMessage) *MessageModel {
	return &MessageModel{
		ID:        msg.ID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Message:   msg.Message,
		Room:      msg.Room,
		CreatedAt: msg.CreatedAt,
	}
}

// HistoryResponse is a paginated list of messages.
type HistoryResponse struct {
	Messages   []ChatMessage `json:"messages"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}
