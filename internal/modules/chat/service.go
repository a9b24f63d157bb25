package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"servicehub/internal/domain"
	"servicehub/internal/realtime"
	"servicehub/internal/repository"
)

// maxMessageLength caps message content in characters, not bytes.
const maxMessageLength = 4000

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Message, error)
	MarkConversationRead(ctx context.Context, bookingID, readerID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type BookingGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// NotificationSender covers the offline fallback: recipients without a
// live connection get a notification row instead.
type NotificationSender interface {
	NotifyNewMessage(ctx context.Context, userID, bookingID int64, senderName string) error
}

type Pusher interface {
	SendToUser(userID int64, event realtime.Event) bool
}

// Service enforces the chat-unlock rule: a booking's conversation only
// accepts messages from its two parties and only once the booking is
// confirmed.
type Service struct {
	messages MessageRepository
	bookings BookingGetter
	users    UserGetter
	notifs   NotificationSender
	cache    *repository.UnreadCache
	hub      Pusher
	logger   zerolog.Logger
}

func NewService(
	messages MessageRepository,
	bookings BookingGetter,
	users UserGetter,
	notifs NotificationSender,
	cache *repository.UnreadCache,
	hub Pusher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		messages: messages,
		bookings: bookings,
		users:    users,
		notifs:   notifs,
		cache:    cache,
		hub:      hub,
		logger:   logger,
	}
}

func (s *Service) SendMessage(ctx context.Context, bookingID, senderID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLength {
		return nil, ErrValidation
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(senderID) {
		return nil, ErrForbidden
	}
	if !b.Status.ChatOpen() {
		return nil, ErrChatNotUnlocked
	}

	m := &domain.Message{
		BookingID:   bookingID,
		SenderID:    senderID,
		RecipientID: b.OtherParty(senderID),
		Content:     content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, repository.UnreadKindMessages, m.RecipientID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", m.RecipientID).Msg("unread cache invalidation failed")
	}

	delivered := false
	if s.hub != nil {
		delivered = s.hub.SendToUser(m.RecipientID, realtime.Event{Kind: "message", Payload: m})
	}

	// Offline recipients get a notification row instead of a live push.
	if !delivered && s.notifs != nil {
		senderName := "Someone"
		if sender, err := s.users.GetByID(ctx, senderID); err == nil {
			senderName = sender.Name
		}
		if err := s.notifs.NotifyNewMessage(ctx, m.RecipientID, bookingID, senderName); err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("new message notification failed")
		}
	}

	return m, nil
}

// ListMessages returns the conversation history to one of the booking's
// parties. History stays readable in terminal states.
func (s *Service) ListMessages(ctx context.Context, bookingID, userID int64, limit, offset int) ([]domain.Message, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, ErrForbidden
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messages.ListByBooking(ctx, bookingID, limit, offset)
}

func (s *Service) MarkConversationRead(ctx context.Context, bookingID, userID int64) error {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !b.IsParty(userID) {
		return ErrForbidden
	}

	if err := s.messages.MarkConversationRead(ctx, bookingID, userID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, repository.UnreadKindMessages, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("unread cache invalidation failed")
	}
	return nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if n, hit, err := s.cache.Get(ctx, repository.UnreadKindMessages, userID); err == nil && hit {
		return n, nil
	}

	n, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, repository.UnreadKindMessages, userID, n); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("unread cache set failed")
	}
	return n, nil
}

func (s *Service) loadBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}
