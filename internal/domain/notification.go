package domain

import "time"

type NotificationType string

const (
	NotifInfo           NotificationType = "info"
	NotifWarning        NotificationType = "warning"
	NotifSuccess        NotificationType = "success"
	NotifError          NotificationType = "error"
	NotifBookingRequest NotificationType = "booking_request"
	NotifBookingUpdate  NotificationType = "booking_update"
	NotifPayment        NotificationType = "payment"
	NotifSystem         NotificationType = "system"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id" gorm:"index:idx_notifications_user_unread"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	RelatedID *int64           `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read" gorm:"index:idx_notifications_user_unread"`
	CreatedAt time.Time        `json:"created_at"`
}
