package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/cache"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/repository"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

type historyService struct {
	repo     repository.MessageRepository
	cache    cache.HistoryCache
	cacheTTL time.Duration
	sf       singleflight.Group
}

// NewHistoryService wires history reads and moderation. cache may be nil
// to serve everything straight from the repository.
func NewHistoryService(
	repo repository.MessageRepository,
	historyCache cache.HistoryCache,
	cacheTTL time.Duration,
) HistoryService {
	return &historyService{
		repo:     repo,
		cache:    historyCache,
		cacheTTL: cacheTTL,
	}
}

// RoomHistory returns one page of a room's messages, newest first. The
// first page is always fetched live so new messages show up immediately;
// deeper pages are cached.
func (s *historyService) RoomHistory(ctx context.Context, room string, page, pageSize int) (*domain.HistoryResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	if s.cache == nil || page == 1 {
		return s.fetchPage(ctx, room, page, pageSize)
	}

	cacheKey := s.cache.BuildKey(room, page, pageSize)

	// Dedupe concurrent requests for the same page
	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		return s.fetchWithCache(ctx, room, page, pageSize, cacheKey)
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*domain.HistoryResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return resp, nil
}

// ListMessages is the moderation view. It never touches the cache and an
// empty room means all rooms.
func (s *historyService) ListMessages(ctx context.Context, room string, page, pageSize int) (*domain.HistoryResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.fetchPage(ctx, room, page, pageSize)
}

// RecentMessages returns the newest messages across all rooms.
func (s *historyService) RecentMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Recent(ctx, limit)
}

// DeleteMessage removes one message by ID.
func (s *historyService) DeleteMessage(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	l := log.Ctx(ctx)
	l.Info().Int64("message_id", id).Msg("chat message deleted")
	return nil
}

func (s *historyService) fetchWithCache(ctx context.Context, room string, page, pageSize int, cacheKey string) (*domain.HistoryResponse, error) {
	cached, err := s.cache.Get(ctx, cacheKey)
	if err == nil {
		return buildHistoryResponse(cached.Messages, cached.Total, page, pageSize), nil
	}

	if !errors.Is(err, cache.ErrCacheMiss) {
		// Log error but continue to fetch from DB
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache get error")
	}

	resp, err := s.fetchPage(ctx, room, page, pageSize)
	if err != nil {
		return nil, err
	}

	// Store in cache (async to avoid blocking response)
	result := &cache.HistoryCacheResult{
		Messages: resp.Messages,
		Total:    resp.Total,
	}
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, cacheKey, result, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("cache set error")
		}
	}()

	return resp, nil
}

func (s *historyService) fetchPage(ctx context.Context, room string, page, pageSize int) (*domain.HistoryResponse, error) {
	messages, total, err := s.repo.ListByRoom(ctx, room, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return buildHistoryResponse(messages, total, page, pageSize), nil
}

func buildHistoryResponse(messages []domain.ChatMessage, total, page, pageSize int) *domain.HistoryResponse {
	totalPages := (total + pageSize - 1) / pageSize
	return &domain.HistoryResponse{
		Messages:   messages,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return page, pageSize
}
