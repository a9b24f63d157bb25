package domain

import "time"

type JobCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name" gorm:"uniqueIndex"`
	Slug string `json:"slug" gorm:"uniqueIndex"`
	Icon string `json:"icon,omitempty"`
}

func (JobCategory) TableName() string { return "job_categories" }

type LocationType string

const (
	LocationOnSite LocationType = "on_site"
	LocationOnline LocationType = "online"
)

// Service is a catalog entry offered by a provider. PricePerHour is the
// quote base for bookings.
type Service struct {
	ID           int64        `json:"id"`
	ProviderID   int64        `json:"provider_id" gorm:"index"`
	CategoryID   int64        `json:"category_id" gorm:"index"`
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description,omitempty" gorm:"type:text"`
	PricePerHour float64      `json:"price_per_hour" validate:"gte=0"`
	LocationType LocationType `json:"location_type"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Category *JobCategory   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images   []ServiceImage `json:"images,omitempty" gorm:"foreignKey:ServiceID"`
}

// ServiceImage is one photo in a service's photo set. At most one image
// per service carries IsPrimary.
type ServiceImage struct {
	ID        int64     `json:"id"`
	ServiceID int64     `json:"service_id" gorm:"index"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"-"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (ServiceImage) TableName() string { return "service_images" }
