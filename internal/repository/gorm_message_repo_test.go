package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
)

func newTestRepo(t *testing.T) *GormMessageRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MessageModel{}))

	return NewGormMessageRepository(db)
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	msg := &domain.ChatMessage{
		Username: "alice",
		Message:  "hi",
		Room:     "support",
	}
	require.NoError(t, repo.Insert(ctx, msg))

	require.NotZero(t, msg.ID)
	require.False(t, msg.CreatedAt.IsZero())
	require.Nil(t, msg.UserID)
}

func TestListByRoomFiltersAndPaginates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &domain.ChatMessage{
			Username: "alice",
			Message:  fmt.Sprintf("support-%d", i),
			Room:     "support",
		}))
	}
	require.NoError(t, repo.Insert(ctx, &domain.ChatMessage{
		Username: "bob",
		Message:  "elsewhere",
		Room:     "general",
	}))

	messages, total, err := repo.ListByRoom(ctx, "support", 1, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, messages, 2)
	// Newest first.
	require.Equal(t, "support-4", messages[0].Message)
	require.Equal(t, "support-3", messages[1].Message)

	messages, total, err = repo.ListByRoom(ctx, "support", 3, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, messages, 1)
	require.Equal(t, "support-0", messages[0].Message)
}

func TestListByRoomAcrossAllRooms(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.ChatMessage{Username: "a", Message: "one", Room: "support"}))
	require.NoError(t, repo.Insert(ctx, &domain.ChatMessage{Username: "b", Message: "two", Room: "general"}))

	messages, total, err := repo.ListByRoom(ctx, "", 1, 50)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, messages, 2)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		model := &domain.MessageModel{
			Username:  "alice",
			Message:   fmt.Sprintf("msg-%d", i),
			Room:      "general",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.db.Create(model).Error)
	}

	messages, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "msg-2", messages[0].Message)
	require.Equal(t, "msg-1", messages[1].Message)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	msg := &domain.ChatMessage{Username: "alice", Message: "hi", Room: "support"}
	require.NoError(t, repo.Insert(ctx, msg))

	require.NoError(t, repo.Delete(ctx, msg.ID))

	_, total, err := repo.ListByRoom(ctx, "support", 1, 50)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestDeleteMissingMessage(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), 12345)
	require.ErrorIs(t, err, ErrMessageNotFound)
}
