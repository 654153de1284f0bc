package kafka

import (
	"context"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
)

// MessageProducer publishes persisted chat messages to the archive stream.
type MessageProducer interface {
	Produce(ctx context.Context, msg *domain.ChatMessage) error
	Close() error
}
