package booking

import "errors"

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("booking not found")
	ErrForbidden              = errors.New("actor may not perform this transition")
	ErrInvalidStateTransition = errors.New("transition not allowed from current status")
	ErrSlotTaken              = errors.New("provider already booked for this slot")
	ErrSelfBooking            = errors.New("client and provider must differ")
	ErrServiceInactive        = errors.New("service is not available for booking")
)
