package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"servicehub/internal/domain"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	ClientID        int64      `gorm:"column:client_id"`
	ProviderID      int64      `gorm:"column:provider_id"`
	ServiceID       int64      `gorm:"column:service_id"`
	ScheduledAt     time.Time  `gorm:"column:scheduled_at"`
	EndsAt          time.Time  `gorm:"column:ends_at"`
	DurationMinutes int        `gorm:"column:duration_minutes"`
	TotalPrice      float64    `gorm:"column:total_price"`
	Status          string     `gorm:"column:status"`
	Notes           *string    `gorm:"column:notes"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &domain.Booking{
		ID:              m.ID,
		ClientID:        m.ClientID,
		ProviderID:      m.ProviderID,
		ServiceID:       m.ServiceID,
		ScheduledAt:     m.ScheduledAt,
		EndsAt:          m.EndsAt,
		DurationMinutes: m.DurationMinutes,
		TotalPrice:      m.TotalPrice,
		Status:          domain.BookingStatus(m.Status),
		Notes:           notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		CancelledAt:     m.CancelledAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var notes *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}

	return bookingModel{
		ID:              b.ID,
		ClientID:        b.ClientID,
		ProviderID:      b.ProviderID,
		ServiceID:       b.ServiceID,
		ScheduledAt:     b.ScheduledAt,
		EndsAt:          b.EndsAt,
		DurationMinutes: b.DurationMinutes,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		Notes:           notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		CancelledAt:     b.CancelledAt,
	}
}

// IsUniqueViolation reports whether err is a Postgres unique or exclusion
// constraint failure. Used to map double-booking to a domain error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "23P01"
	}
	return false
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// HasOverlap reports whether the provider already has a live booking
// intersecting [start, end).
func (r *BookingRepository) HasOverlap(ctx context.Context, providerID int64, start, end time.Time) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM bookings
WHERE provider_id = ?
  AND status IN ('pending', 'confirmed')
  AND scheduled_at < ?
  AND ends_at > ?
`
	tx := r.db.WithContext(ctx).Raw(q, providerID, end, start).Scan(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// UpdateStatusFrom flips the status only when the row still holds `from`,
// so a concurrent competing transition loses with zero rows affected.
func (r *BookingRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) (int64, error) {
	patch := map[string]any{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if to == domain.BookingCancelled {
		now := time.Now()
		patch["cancelled_at"] = &now
	}

	res := r.db.WithContext(ctx).
		Table("bookings").
		Where("id = ? AND status = ?", id, string(from)).
		Updates(patch)
	return res.RowsAffected, res.Error
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "client_id", clientID, limit, offset)
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "provider_id", providerID, limit, offset)
}

func (r *BookingRepository) list(ctx context.Context, column string, userID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	q := r.db.WithContext(ctx).
		Table("bookings").
		Where(column+" = ?", userID).
		Order("scheduled_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
