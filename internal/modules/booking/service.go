package booking

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"servicehub/internal/domain"
	"servicehub/internal/repository"
)

const maxDuration = 12 * time.Hour

// Service owns the booking lifecycle: creation, the transition rules
// between statuses, per-transition authorization and the notification
// side effects.
type Service struct {
	bookings BookingRepository
	catalog  ServiceCatalog
	notifs   NotificationSender
	logger   zerolog.Logger
}

func NewService(bookings BookingRepository, catalog ServiceCatalog, notifs NotificationSender, logger zerolog.Logger) *Service {
	return &Service{
		bookings: bookings,
		catalog:  catalog,
		notifs:   notifs,
		logger:   logger,
	}
}

// RequestBooking creates a pending booking for a future slot and
// notifies the provider.
func (s *Service) RequestBooking(ctx context.Context, clientID int64, req CreateBookingRequest) (*domain.Booking, error) {
	start, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, ErrValidation
	}

	dur := time.Duration(req.DurationMinutes) * time.Minute
	if dur <= 0 || dur > maxDuration {
		return nil, ErrValidation
	}
	if start.Before(time.Now()) {
		return nil, ErrValidation
	}

	svc, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrValidation
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if svc.ProviderID == clientID {
		return nil, ErrSelfBooking
	}

	end := start.Add(dur)
	taken, err := s.bookings.HasOverlap(ctx, svc.ProviderID, start, end)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	total := svc.PricePerHour * dur.Hours()
	total = math.Round(total*100) / 100

	b := &domain.Booking{
		ClientID:        clientID,
		ProviderID:      svc.ProviderID,
		ServiceID:       svc.ID,
		ScheduledAt:     start,
		EndsAt:          end,
		DurationMinutes: req.DurationMinutes,
		TotalPrice:      total,
		Status:          domain.BookingPending,
		Notes:           req.Notes,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	// Best effort: a failed notification never rolls back the booking.
	if s.notifs != nil {
		if err := s.notifs.NotifyBookingRequested(ctx, b.ProviderID, b.ID, svc.Title, b.ScheduledAt); err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("booking request notification failed")
		}
	}

	return b, nil
}

// Accept confirms a pending booking. Provider or admin only.
func (s *Service) Accept(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, actorRole, domain.BookingConfirmed)
}

// Decline rejects a pending booking. Provider or admin only. Chat stays
// locked permanently.
func (s *Service) Decline(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, actorRole, domain.BookingDeclined)
}

// Complete marks a confirmed booking as delivered. Provider or admin only.
func (s *Service) Complete(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, actorRole, domain.BookingCompleted)
}

// Cancel cancels a confirmed booking. Either party or admin.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actorID, actorRole, domain.BookingCancelled)
}

func (s *Service) transition(ctx context.Context, bookingID, actorID int64, actorRole string, target domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isAdmin := actorRole == string(domain.RoleAdmin)
	switch target {
	case domain.BookingConfirmed, domain.BookingDeclined, domain.BookingCompleted:
		if !isAdmin && actorID != b.ProviderID {
			return nil, ErrForbidden
		}
	case domain.BookingCancelled:
		if !isAdmin && !b.IsParty(actorID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrInvalidStateTransition
	}

	if !b.Status.CanTransition(target) {
		return nil, ErrInvalidStateTransition
	}

	// Conditional update: the loser of a concurrent accept/decline race
	// matches zero rows and surfaces the same precondition error.
	rows, err := s.bookings.UpdateStatusFrom(ctx, bookingID, b.Status, target)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidStateTransition
	}

	s.notifyTransition(ctx, b, actorID, target)

	return s.bookings.GetByID(ctx, bookingID)
}

// notifyTransition informs the counter-party of a status change.
// Accept/decline/complete always target the client; cancel targets
// whoever did not initiate it.
func (s *Service) notifyTransition(ctx context.Context, b *domain.Booking, actorID int64, target domain.BookingStatus) {
	if s.notifs == nil {
		return
	}

	recipient := b.ClientID
	if target == domain.BookingCancelled {
		if other := b.OtherParty(actorID); other != 0 {
			recipient = other
		}
	}

	if err := s.notifs.NotifyBookingUpdated(ctx, recipient, b.ID, target); err != nil {
		s.logger.Warn().Err(err).
			Int64("booking_id", b.ID).
			Str("status", string(target)).
			Msg("booking update notification failed")
	}
}

// GetBooking returns a booking to one of its parties or an admin.
func (s *Service) GetBooking(ctx context.Context, bookingID, actorID int64, actorRole string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actorRole != string(domain.RoleAdmin) && !b.IsParty(actorID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListMyBookings lists bookings where the user is the provider (for
// provider accounts) or the client (everyone else).
func (s *Service) ListMyBookings(ctx context.Context, userID int64, role string, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if role == string(domain.RoleProvider) {
		return s.bookings.ListByProvider(ctx, userID, limit, offset)
	}
	return s.bookings.ListByClient(ctx, userID, limit, offset)
}

func parseSlot(date, clock string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
