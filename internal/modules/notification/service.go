package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"servicehub/internal/domain"
	"servicehub/internal/realtime"
	"servicehub/internal/repository"
)

var ErrNotFound = errors.New("notification not found")

// Repository is the persistence surface for notifications.
type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// Pusher delivers live events to connected clients.
type Pusher interface {
	SendToUser(userID int64, event realtime.Event) bool
}

// Service turns lifecycle events into notification rows with fixed
// templates and serves the read side (list, unread badge, mark-read).
type Service struct {
	repo   Repository
	cache  *repository.UnreadCache
	hub    Pusher
	logger zerolog.Logger
}

func NewService(repo Repository, cache *repository.UnreadCache, hub Pusher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, hub: hub, logger: logger}
}

// Create persists one notification row per call. No de-duplication:
// idempotency is the caller's concern.
func (s *Service) Create(ctx context.Context, userID int64, t domain.NotificationType, title, message string, relatedID *int64) error {
	n := &domain.Notification{
		UserID:    userID,
		Type:      t,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		IsRead:    false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, repository.UnreadKindNotifications, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("unread cache invalidation failed")
	}
	if s.hub != nil {
		s.hub.SendToUser(userID, realtime.Event{Kind: "notification", Payload: n})
	}
	return nil
}

// NotifyBookingRequested informs a provider about a new pending booking.
func (s *Service) NotifyBookingRequested(ctx context.Context, providerID, bookingID int64, serviceTitle string, start time.Time) error {
	return s.Create(
		ctx,
		providerID,
		domain.NotifBookingRequest,
		"New booking request",
		fmt.Sprintf("You have a new request for %q on %s", serviceTitle, start.Format("2006-01-02 15:04")),
		&bookingID,
	)
}

// NotifyBookingUpdated informs a booking party about a status change.
func (s *Service) NotifyBookingUpdated(ctx context.Context, userID, bookingID int64, status domain.BookingStatus) error {
	var title, message string
	switch status {
	case domain.BookingConfirmed:
		title = "Booking confirmed"
		message = "Your booking has been confirmed. You can now chat with the provider."
	case domain.BookingDeclined:
		title = "Booking declined"
		message = "Your booking request was declined by the provider."
	case domain.BookingCompleted:
		title = "Booking completed"
		message = "Your booking has been marked as completed."
	case domain.BookingCancelled:
		title = "Booking cancelled"
		message = "The booking has been cancelled."
	default:
		title = "Booking updated"
		message = fmt.Sprintf("Booking status changed to %s.", status)
	}

	return s.Create(ctx, userID, domain.NotifBookingUpdate, title, message, &bookingID)
}

// NotifyNewMessage is sent when the recipient is offline at delivery time.
func (s *Service) NotifyNewMessage(ctx context.Context, userID, bookingID int64, senderName string) error {
	return s.Create(
		ctx,
		userID,
		domain.NotifSystem,
		"New message",
		fmt.Sprintf("%s sent you a message", senderName),
		&bookingID,
	)
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount serves the badge, preferring the cache and falling back to
// the store on a miss.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if n, hit, err := s.cache.Get(ctx, repository.UnreadKindNotifications, userID); err == nil && hit {
		return n, nil
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, repository.UnreadKindNotifications, userID, n); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("unread cache set failed")
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, repository.UnreadKindNotifications, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("unread cache invalidation failed")
	}
}
