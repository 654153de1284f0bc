package cache

import (
	"context"
	"errors"
	"time"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// HistoryCacheResult is one cached history page.
type HistoryCacheResult struct {
	Messages []domain.ChatMessage `json:"messages"`
	Total    int                  `json:"total"`
}

// HistoryCache caches paginated history reads.
type HistoryCache interface {
	Get(ctx context.Context, key string) (*HistoryCacheResult, error)
	Set(ctx context.Context, key string, result *HistoryCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKey(room string, page, pageSize int) string
	Close() error
}
