package booking

type CreateBookingRequest struct {
	ServiceID       int64  `json:"service_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	Notes           string `json:"notes"`
}
