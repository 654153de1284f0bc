package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/config"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/hub"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/registry"
)

type fakeMessageRepo struct {
	inserted  []domain.ChatMessage
	insertErr error
}

func (f *fakeMessageRepo) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	msg.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *msg)
	return nil
}

func (f *fakeMessageRepo) ListByRoom(ctx context.Context, room string, page, pageSize int) ([]domain.ChatMessage, int, error) {
	return nil, 0, nil
}

func (f *fakeMessageRepo) Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func newTestChat(repo *fakeMessageRepo) (ChatService, *hub.Hub, registry.Registry) {
	h := hub.NewHub()
	reg := registry.NewMemoryRegistry()
	svc := NewChatService(repo, reg, h, nil, config.ChatConfig{
		DefaultRoom:    "general",
		WelcomeMessage: "Welcome to AletheianDocs support chat!",
	})
	return svc, h, reg
}

func newTestClient(t *testing.T, h *hub.Hub, id string) *hub.Client {
	t.Helper()
	c := hub.NewClient(id, h, nil, config.WebSocketConfig{})
	h.Register(c)
	return c
}

func recvMessageEvent(t *testing.T, c *hub.Client) *domain.MessageEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var evt domain.MessageEvent
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	default:
		t.Fatal("expected a queued event")
		return nil
	}
}

func recvErrorEvent(t *testing.T, c *hub.Client) *domain.ErrorEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var evt domain.ErrorEvent
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	default:
		t.Fatal("expected a queued event")
		return nil
	}
}

func requireNoEvent(t *testing.T, c *hub.Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("expected no event, got %s", data)
	default:
	}
}

type fakeProducer struct {
	produced chan domain.ChatMessage
	err      error
}

func newFakeProducer(err error) *fakeProducer {
	return &fakeProducer{produced: make(chan domain.ChatMessage, 16), err: err}
}

func (f *fakeProducer) Produce(ctx context.Context, msg *domain.ChatMessage) error {
	f.produced <- *msg
	return f.err
}

func (f *fakeProducer) Close() error { return nil }

type recordingSender struct {
	rawConnIDs []string
	payloads   [][]byte
	typedSends int
}

func (r *recordingSender) SendTo(connID string, message interface{}) error {
	r.typedSends++
	return nil
}

func (r *recordingSender) SendRaw(connID string, data []byte) error {
	r.rawConnIDs = append(r.rawConnIDs, connID)
	r.payloads = append(r.payloads, data)
	return nil
}

func TestHandleConnectSendsWelcomeOnlyToNewSession(t *testing.T) {
	svc, h, _ := newTestChat(&fakeMessageRepo{})
	existing := newTestClient(t, h, "conn-existing")
	fresh := newTestClient(t, h, "conn-fresh")

	require.NoError(t, svc.HandleConnect(context.Background(), fresh))

	evt := recvMessageEvent(t, fresh)
	require.Equal(t, domain.EventMessage, evt.Type)
	require.Equal(t, domain.SystemUser, evt.User)
	require.Equal(t, "Welcome to AletheianDocs support chat!", evt.Message)
	require.NotEmpty(t, evt.Timestamp)

	requireNoEvent(t, existing)
}

func TestHandleConnectAfterDisconnectIsNoop(t *testing.T) {
	svc, h, _ := newTestChat(&fakeMessageRepo{})
	c := newTestClient(t, h, "conn-gone")

	// The welcome runs on the HTTP goroutine, so the connection can drop
	// and be unregistered before the greeting is queued.
	h.Unregister(c)

	require.NotPanics(t, func() {
		require.NoError(t, svc.HandleConnect(context.Background(), c))
	})
}

func TestSendMessagePersistsThenBroadcastsToRoom(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, _ := newTestChat(repo)
	ctx := context.Background()

	alice := newTestClient(t, h, "conn-alice")
	bob := newTestClient(t, h, "conn-bob")
	outsider := newTestClient(t, h, "conn-outsider")

	require.NoError(t, svc.HandleJoinRoom(ctx, alice, "support"))
	require.NoError(t, svc.HandleJoinRoom(ctx, bob, "support"))
	require.NoError(t, svc.HandleJoinRoom(ctx, outsider, "legal"))

	userID := int64(42)
	err := svc.SendMessage(ctx, alice, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		UserID:   &userID,
		Username: "alice",
		Message:  "hello support",
		Room:     "support",
	})
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	require.Equal(t, "alice", repo.inserted[0].Username)
	require.Equal(t, "hello support", repo.inserted[0].Message)
	require.Equal(t, "support", repo.inserted[0].Room)
	require.NotNil(t, repo.inserted[0].UserID)
	require.Equal(t, userID, *repo.inserted[0].UserID)

	for _, member := range []*hub.Client{alice, bob} {
		evt := recvMessageEvent(t, member)
		require.Equal(t, domain.EventMessage, evt.Type)
		require.Equal(t, "alice", evt.User)
		require.Equal(t, "hello support", evt.Message)
		require.NotNil(t, evt.UserID)
		require.Equal(t, userID, *evt.UserID)
	}

	requireNoEvent(t, outsider)
}

func TestSendMessageDefaultsToGeneralRoom(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, _ := newTestChat(repo)
	ctx := context.Background()

	lurker := newTestClient(t, h, "conn-lurker")
	require.NoError(t, svc.HandleJoinRoom(ctx, lurker, ""))
	require.Equal(t, "general", lurker.Session.CurrentRoom())

	sender := newTestClient(t, h, "conn-sender")
	require.NoError(t, svc.HandleJoinRoom(ctx, sender, "general"))

	err := svc.SendMessage(ctx, sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "anon",
		Message:  "no room set",
	})
	require.NoError(t, err)

	require.Equal(t, "general", repo.inserted[0].Room)
	evt := recvMessageEvent(t, lurker)
	require.Equal(t, "no room set", evt.Message)
	require.Nil(t, evt.UserID)
}

func TestSendMessageWithoutJoinGetsNoEcho(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, _ := newTestChat(repo)

	sender := newTestClient(t, h, "conn-sender")

	err := svc.SendMessage(context.Background(), sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "drive-by",
		Message:  "anyone here?",
		Room:     "support",
	})
	require.NoError(t, err)

	// Persisted, but the sender never joined the room so nothing comes back.
	require.Len(t, repo.inserted, 1)
	requireNoEvent(t, sender)
}

func TestSendMessagePersistFailureBroadcastsNothing(t *testing.T) {
	repo := &fakeMessageRepo{insertErr: errors.New("db down")}
	svc, h, _ := newTestChat(repo)
	ctx := context.Background()

	sender := newTestClient(t, h, "conn-sender")
	require.NoError(t, svc.HandleJoinRoom(ctx, sender, "support"))

	err := svc.SendMessage(ctx, sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "alice",
		Message:  "will not survive",
		Room:     "support",
	})
	require.Error(t, err)

	requireNoEvent(t, sender)
}

func TestSendMessageRejectsMissingFields(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, _ := newTestChat(repo)
	ctx := context.Background()

	sender := newTestClient(t, h, "conn-sender")
	require.NoError(t, svc.HandleJoinRoom(ctx, sender, "support"))

	err := svc.SendMessage(ctx, sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "alice",
	})
	require.Error(t, err)
	require.Empty(t, repo.inserted)

	evt := recvErrorEvent(t, sender)
	require.Equal(t, domain.EventError, evt.Type)
	require.Equal(t, domain.ErrCodeBadRequest, evt.Code)
}

func TestJoinRoomLeavesPreviousRoom(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, reg := newTestChat(repo)
	ctx := context.Background()

	c := newTestClient(t, h, "conn-mover")
	require.NoError(t, svc.HandleJoinRoom(ctx, c, "support"))
	require.NoError(t, svc.HandleJoinRoom(ctx, c, "legal"))

	require.Empty(t, reg.MembersOf("support"))
	require.Equal(t, []string{"conn-mover"}, reg.MembersOf("legal"))
	require.Equal(t, "legal", c.Session.CurrentRoom())

	// Rejoining the current room keeps membership intact.
	require.NoError(t, svc.HandleJoinRoom(ctx, c, "legal"))
	require.Equal(t, []string{"conn-mover"}, reg.MembersOf("legal"))
}

func TestSendMessageArchiveFailureDoesNotBlockDelivery(t *testing.T) {
	repo := &fakeMessageRepo{}
	h := hub.NewHub()
	reg := registry.NewMemoryRegistry()
	producer := newFakeProducer(errors.New("broker down"))
	svc := NewChatService(repo, reg, h, producer, config.ChatConfig{DefaultRoom: "general"})
	ctx := context.Background()

	sender := newTestClient(t, h, "conn-sender")
	require.NoError(t, svc.HandleJoinRoom(ctx, sender, "support"))

	err := svc.SendMessage(ctx, sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "alice",
		Message:  "archived or not",
		Room:     "support",
	})
	require.NoError(t, err)

	// Archiving is fire-and-forget; the broadcast must not wait on it.
	recvMessageEvent(t, sender)

	select {
	case archived := <-producer.produced:
		require.Equal(t, "support", archived.Room)
	case <-time.After(time.Second):
		t.Fatal("message never reached the producer")
	}
}

func TestSendMessageEncodesBroadcastOnce(t *testing.T) {
	repo := &fakeMessageRepo{}
	h := hub.NewHub()
	reg := registry.NewMemoryRegistry()
	out := &recordingSender{}
	svc := NewChatService(repo, reg, out, nil, config.ChatConfig{DefaultRoom: "general"})
	ctx := context.Background()

	sender := newTestClient(t, h, "conn-sender")
	require.NoError(t, svc.HandleJoinRoom(ctx, sender, "support"))
	reg.Join("conn-other", "support")

	err := svc.SendMessage(ctx, sender, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "alice",
		Message:  "hello",
		Room:     "support",
	})
	require.NoError(t, err)

	require.Zero(t, out.typedSends)
	require.ElementsMatch(t, []string{"conn-sender", "conn-other"}, out.rawConnIDs)
	require.Len(t, out.payloads, 2)
	// Every member gets the same encoded bytes, not a fresh marshal each.
	require.Equal(t, out.payloads[0], out.payloads[1])
	require.Same(t, &out.payloads[0][0], &out.payloads[1][0])

	var evt domain.MessageEvent
	require.NoError(t, json.Unmarshal(out.payloads[0], &evt))
	require.Equal(t, "hello", evt.Message)
}

func TestHandleDisconnectRemovesMembership(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, h, reg := newTestChat(repo)
	ctx := context.Background()

	c := newTestClient(t, h, "conn-leaver")
	stay := newTestClient(t, h, "conn-stayer")
	require.NoError(t, svc.HandleJoinRoom(ctx, c, "support"))
	require.NoError(t, svc.HandleJoinRoom(ctx, stay, "support"))

	require.NoError(t, svc.HandleDisconnect(ctx, c))

	require.Equal(t, []string{"conn-stayer"}, reg.MembersOf("support"))
	require.Equal(t, "", c.Session.CurrentRoom())

	err := svc.SendMessage(ctx, stay, &domain.SendMessageEvent{
		Type:     domain.EventSendMessage,
		Username: "stayer",
		Message:  "still here",
		Room:     "support",
	})
	require.NoError(t, err)
	requireNoEvent(t, c)
	recvMessageEvent(t, stay)
}
