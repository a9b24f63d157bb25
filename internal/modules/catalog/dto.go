package catalog

type CreateServiceRequest struct {
	CategoryID   int64   `json:"category_id" binding:"required"`
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gte=0"`
	LocationType string  `json:"location_type" binding:"omitempty,oneof=on_site online"`
}

type UpdateServiceRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	PricePerHour *float64 `json:"price_per_hour" binding:"omitempty,gte=0"`
	LocationType *string  `json:"location_type" binding:"omitempty,oneof=on_site online"`
	IsActive     *bool    `json:"is_active"`
}
