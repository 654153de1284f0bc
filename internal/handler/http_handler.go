package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/audit"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/repository"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/service"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/middleware"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/response"
)

// HTTPHandler serves chat history reads and the admin moderation surface.
type HTTPHandler struct {
	history        service.HistoryService
	authMiddleware *middleware.AuthMiddleware
}

func NewHTTPHandler(history service.HistoryService, authMiddleware *middleware.AuthMiddleware) *HTTPHandler {
	return &HTTPHandler{
		history:        history,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1/chat")
	{
		// Public routes
		api.GET("/rooms/:room/messages", h.RoomHistory)

		// Admin routes
		admin := api.Group("", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireAdmin())
		{
			admin.GET("/messages", h.ListMessages)
			admin.GET("/messages/recent", h.RecentMessages)
			admin.DELETE("/messages/:id", h.DeleteMessage)
		}
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// RoomHistory returns one page of a room's messages, newest first.
func (h *HTTPHandler) RoomHistory(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	room := c.Param("room")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)

	result, err := h.history.RoomHistory(ctx, room, page, pageSize)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoom, room).Msg("failed to get room history")
		response.InternalError(c, "failed to get room history")
		return
	}

	response.Success(c, result)
}

// ListMessages is the moderation list. An empty room query means all rooms.
func (h *HTTPHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	room := c.Query("room")
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)

	result, err := h.history.ListMessages(ctx, room, page, pageSize)
	if err != nil {
		l.Error().Err(err).Msg("failed to list messages")
		response.InternalError(c, "failed to list messages")
		return
	}

	response.Success(c, result)
}

// RecentMessages returns the newest messages across all rooms.
func (h *HTTPHandler) RecentMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	limit := queryInt(c, "limit", 10)

	messages, err := h.history.RecentMessages(ctx, limit)
	if err != nil {
		l.Error().Err(err).Msg("failed to get recent messages")
		response.InternalError(c, "failed to get recent messages")
		return
	}

	response.Success(c, messages)
}

// DeleteMessage removes one message by ID.
func (h *HTTPHandler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	if err := h.history.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		l.Error().Err(err).Int64("message_id", id).Msg("failed to delete message")
		response.InternalError(c, "failed to delete message")
		return
	}

	audit.LogWithTarget(ctx, audit.ActionModerateDelete, middleware.GetUsername(c), c.Param("id"), "message deleted by moderator")

	response.Success(c, gin.H{"deleted": id})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return v
}
