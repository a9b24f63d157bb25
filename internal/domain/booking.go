package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingDeclined  BookingStatus = "declined"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingEdges is the full transition graph of the booking lifecycle.
// declined, completed and cancelled are terminal.
var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingDeclined},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func (from BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingEdges[s]) == 0
}

// ChatOpen reports whether messaging is unlocked for a booking in this
// status. Chat opens on confirmation and stays readable after completion.
func (s BookingStatus) ChatOpen() bool {
	return s == BookingConfirmed || s == BookingCompleted
}

type Booking struct {
	ID              int64         `json:"id"`
	ClientID        int64         `json:"client_id" validate:"required"`
	ProviderID      int64         `json:"provider_id" validate:"required"`
	ServiceID       int64         `json:"service_id" validate:"required"`
	ScheduledAt     time.Time     `json:"scheduled_at" validate:"required"`
	EndsAt          time.Time     `json:"ends_at"`
	DurationMinutes int           `json:"duration_minutes" validate:"required,gt=0"`
	TotalPrice      float64       `json:"total_price" validate:"gte=0"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`

	Client   *User    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Provider *User    `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Service  *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// OtherParty returns the counter-party of userID on this booking, or 0
// if userID is not a party at all.
func (b *Booking) OtherParty(userID int64) int64 {
	switch userID {
	case b.ClientID:
		return b.ProviderID
	case b.ProviderID:
		return b.ClientID
	}
	return 0
}

// IsParty reports whether userID is the client or the provider.
func (b *Booking) IsParty(userID int64) bool {
	return userID == b.ClientID || userID == b.ProviderID
}
