package domain

import "time"

type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	City         string    `json:"city,omitempty"`
	Bio          string    `json:"bio,omitempty" gorm:"type:text"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ServiceProvider holds the provider-specific part of a profile.
// Created together with the user when someone registers as a provider.
type ServiceProvider struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id" gorm:"uniqueIndex"`
	Headline        string    `json:"headline,omitempty"`
	YearsExperience int       `json:"years_experience,omitempty"`
	Verified        bool      `json:"verified"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ServiceProvider) TableName() string { return "service_providers" }

// ProfilePhoto is the single active avatar record for a user.
// A new upload supersedes the previous row entirely.
type ProfilePhoto struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" gorm:"index"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProfilePhoto) TableName() string { return "profile_photos" }
