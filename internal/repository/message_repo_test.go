package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
)

func seedMessage(t *testing.T, repo *MessageRepository, bookingID, senderID, recipientID int64, content string) *domain.Message {
	t.Helper()

	m := &domain.Message{
		BookingID:   bookingID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestMessageRepository_ListByBooking_Chronological(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	seedMessage(t, repo, 123, 1, 2, "first")
	seedMessage(t, repo, 123, 2, 1, "second")
	seedMessage(t, repo, 456, 1, 2, "other conversation")

	msgs, err := repo.ListByBooking(context.Background(), 123, 50, 0)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestMessageRepository_MarkConversationRead(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	seedMessage(t, repo, 123, 1, 2, "unread one")
	seedMessage(t, repo, 123, 1, 2, "unread two")
	seedMessage(t, repo, 123, 2, 1, "addressed to the other side")

	require.NoError(t, repo.MarkConversationRead(context.Background(), 123, 2))

	count, err := repo.CountUnread(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The reader's own outgoing messages stay untouched.
	count, err = repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	msgs, err := repo.ListByBooking(context.Background(), 123, 50, 0)
	require.NoError(t, err)
	for _, m := range msgs {
		if m.RecipientID == 2 {
			assert.True(t, m.IsRead)
			assert.NotNil(t, m.ReadAt)
		}
	}
}

func TestMessageRepository_CountUnread_AcrossBookings(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	seedMessage(t, repo, 123, 1, 2, "a")
	seedMessage(t, repo, 456, 1, 2, "b")

	count, err := repo.CountUnread(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
