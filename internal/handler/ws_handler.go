package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/config"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/hub"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/service"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/jwt"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades HTTP requests to chat websocket connections and
// translates inbound frames into service calls.
type WSHandler struct {
	hub     *hub.Hub
	service service.ChatService
	tokens  *jwt.Manager
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, tokens *jwt.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		tokens:  tokens,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/chat/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and starts the client pumps. An
// optional token query parameter binds a verified identity to the session;
// an invalid token closes the connection before any chat traffic.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	if token := c.Query("token"); token != "" {
		claims, err := h.tokens.Verify(token)
		if err != nil {
			// The pumps are not running yet; write the rejection directly.
			conn.WriteJSON(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid token"))
			conn.Close()
			return
		}
		client.Session.Identify(claims.UserID, claims.Username)
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleEvent, h.handleClose)

	if err := h.service.HandleConnect(context.Background(), client); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("welcome delivery failed")
	}
}

func (h *WSHandler) handleEvent(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	ctx := context.Background()
	l := log.L()

	switch base.Type {
	case domain.EventJoinRoom:
		var evt domain.JoinRoomEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid join-room event"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, evt.Room); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("join room failed")
		}

	case domain.EventSendMessage:
		var evt domain.SendMessageEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid send-message event"))
			return
		}
		if err := h.service.SendMessage(ctx, client, &evt); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("send message failed")
		}

	default:
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type"))
	}
}

func (h *WSHandler) handleClose(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("disconnect cleanup failed")
	}
}
