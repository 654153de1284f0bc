package domain

// WebSocket event types from client.
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
)

// WebSocket event types to client.
const (
	EventMessage = "message"
	EventError   = "error"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// SystemUser is the display name on server-generated messages.
const SystemUser = "System"

// BaseEvent is the envelope shared by all client events.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

// JoinRoomEvent subscribes the connection to a room. Any string is
// accepted as a room name; rooms exist implicitly via membership.
type JoinRoomEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// SendMessageEvent posts a chat message. Room is optional and defaults
// to DefaultRoom; UserID is optional for anonymous senders.
type SendMessageEvent struct {
	Type     string `json:"type"`
	UserID   *int64 `json:"userId,omitempty"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Room     string `json:"room,omitempty"`
}

// Server -> Client events

// MessageEvent is delivered to room members on broadcast and, with the
// System user, to a newly connected session as its welcome.
type MessageEvent struct {
	Type      string `json:"type"`
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	UserID    *int64 `json:"userId,omitempty"`
}

// ErrorEvent reports a rejected client event.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorEvent builds an error envelope.
func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EventError,
		Code:    code,
		Message: message,
	}
}
