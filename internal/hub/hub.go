package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

// ErrClientNotFound is returned by SendTo for unknown connection IDs,
// which is normal when a client disconnected between snapshot and send.
var ErrClientNotFound = errors.New("client not found")

// Hub tracks live connections by ID and delivers payloads to them. Room
// membership is not the hub's concern; the registry owns that.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a connected client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldConnID, client.ID).Msg("client registered")
}

// Unregister removes a client and closes its send channel. Safe to call
// more than once for the same client.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.mu.Unlock()

	if ok {
		l := log.L()
		l.Debug().Str(log.FieldConnID, client.ID).Msg("client unregistered")
	}
}

// SendTo marshals the message and queues it for one connection. A full
// send buffer drops the payload rather than blocking the caller.
func (h *Hub) SendTo(connID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return h.SendRaw(connID, data)
}

// SendRaw queues pre-encoded bytes for one connection, so fan-out callers
// can marshal a payload once and reuse it per member.
func (h *Hub) SendRaw(connID string, data []byte) error {
	// Hold the read lock across the non-blocking send so Unregister
	// cannot close the channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
	default:
		l := log.L()
		l.Warn().Str(log.FieldConnID, connID).Msg("send buffer full, dropping payload")
	}
	return nil
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
