package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/audit"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/config"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/hub"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/kafka"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/registry"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/repository"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

// Sender delivers a payload to one live connection.
type Sender interface {
	SendTo(connID string, message interface{}) error
	SendRaw(connID string, data []byte) error
}

type chatService struct {
	repo     repository.MessageRepository
	registry registry.Registry
	sender   Sender
	producer kafka.MessageProducer
	cfg      config.ChatConfig
}

// NewChatService wires the chat protocol. producer may be nil when the
// archive stream is disabled.
func NewChatService(
	repo repository.MessageRepository,
	reg registry.Registry,
	sender Sender,
	producer kafka.MessageProducer,
	cfg config.ChatConfig,
) ChatService {
	return &chatService{
		repo:     repo,
		registry: reg,
		sender:   sender,
		producer: producer,
		cfg:      cfg,
	}
}

// HandleConnect greets the new session. The welcome goes only to the
// connecting client, never to a room. Delivery goes through the sender so
// a connection that dropped before the greeting is a no-op, not a panic.
func (s *chatService) HandleConnect(ctx context.Context, c *hub.Client) error {
	err := s.sender.SendTo(c.ID, &domain.MessageEvent{
		Type:      domain.EventMessage,
		User:      domain.SystemUser,
		Message:   s.cfg.WelcomeMessage,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if errors.Is(err, hub.ErrClientNotFound) {
		return nil
	}
	return err
}

// HandleJoinRoom subscribes the connection to a room, leaving its previous
// room first. A connection is a member of at most one room at a time.
func (s *chatService) HandleJoinRoom(ctx context.Context, c *hub.Client, room string) error {
	if room == "" {
		room = s.cfg.DefaultRoom
	}

	if prev := c.Session.CurrentRoom(); prev != "" && prev != room {
		s.registry.LeaveRoom(c.ID, prev)
	}

	s.registry.Join(c.ID, room)
	c.Session.JoinRoom(room)

	_, username := c.Session.Identity()
	audit.LogWithDetail(ctx, audit.ActionJoinRoom, username, room, "joined room")

	return nil
}

// SendMessage persists the message and broadcasts it to the target room's
// current members. On a persistence failure nothing is broadcast and the
// sender gets no delivery; the error surfaces only in the logs.
func (s *chatService) SendMessage(ctx context.Context, c *hub.Client, event *domain.SendMessageEvent) error {
	if event.Username == "" || event.Message == "" {
		c.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "username and message are required"))
		return errors.New("missing username or message")
	}

	room := event.Room
	if room == "" {
		room = s.cfg.DefaultRoom
	}

	msg := &domain.ChatMessage{
		UserID:   event.UserID,
		Username: event.Username,
		Message:  event.Message,
		Room:     room,
	}

	if err := s.repo.Insert(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldRoom, room).Msg("failed to save chat message")
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, msg.Username, room, "message sent")

	if s.producer != nil {
		go func(archived domain.ChatMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.producer.Produce(ctx, &archived); err != nil {
				l := log.L()
				l.Error().Err(err).Msg("failed to archive chat message")
			}
		}(*msg)
	}

	out, err := json.Marshal(&domain.MessageEvent{
		Type:      domain.EventMessage,
		User:      msg.Username,
		Message:   msg.Message,
		Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
		UserID:    msg.UserID,
	})
	if err != nil {
		return err
	}

	// Encode once, deliver the same bytes to every member.
	for _, connID := range s.registry.MembersOf(room) {
		if err := s.sender.SendRaw(connID, out); err != nil && !errors.Is(err, hub.ErrClientNotFound) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldConnID, connID).Msg("failed to deliver message")
		}
	}

	return nil
}

// HandleDisconnect drops the connection from every room it joined.
func (s *chatService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	s.registry.Leave(c.ID)
	c.Session.LeaveRoom()

	_, username := c.Session.Identity()
	audit.Log(ctx, audit.ActionDisconnect, username, "client disconnected")

	return nil
}
