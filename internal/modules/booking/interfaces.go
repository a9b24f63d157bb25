package booking

import (
	"context"
	"time"

	"servicehub/internal/domain"
)

// BookingRepository is the persistence surface the lifecycle controller
// needs. UpdateStatusFrom must be conditional on the current status.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	HasOverlap(ctx context.Context, providerID int64, start, end time.Time) (bool, error)
	UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) (int64, error)
	ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Booking, error)
}

// ServiceCatalog resolves the booked service for provider and price.
type ServiceCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// NotificationSender dispatches the lifecycle side-effect notifications.
// Calls are best-effort: a failure is logged by the caller, never
// propagated.
type NotificationSender interface {
	NotifyBookingRequested(ctx context.Context, providerID, bookingID int64, serviceTitle string, start time.Time) error
	NotifyBookingUpdated(ctx context.Context, userID, bookingID int64, status domain.BookingStatus) error
}
