package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"servicehub/internal/domain"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Message, error) {
	var out []domain.Message
	q := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkConversationRead flags every message addressed to readerID in the
// booking's conversation as read.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, bookingID, readerID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("booking_id = ? AND recipient_id = ? AND is_read = ?", bookingID, readerID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
