package catalog

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("service not found")
	ErrForbidden    = errors.New("user does not own this service")
	ErrPhotoLimit   = errors.New("photo set is full")
	ErrInvalidImage = errors.New("invalid image file")
)
