package domain

import "time"

// Message belongs to the conversation implicitly keyed by its booking.
// There is one conversation per booking and it only accepts writes once
// the booking is confirmed.
type Message struct {
	ID          int64      `json:"id"`
	BookingID   int64      `json:"booking_id" gorm:"not null;index"`
	SenderID    int64      `json:"sender_id" gorm:"not null"`
	RecipientID int64      `json:"recipient_id" gorm:"not null;index"`
	Content     string     `json:"content" gorm:"not null;type:text"`
	IsRead      bool       `json:"is_read" gorm:"default:false"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Sender *User `json:"sender,omitempty" gorm:"-"`
}

func (Message) TableName() string { return "messages" }
