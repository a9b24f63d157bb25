package chat

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("booking not found")
	ErrForbidden       = errors.New("sender is not a party of this booking")
	ErrChatNotUnlocked = errors.New("chat is not unlocked for this booking")
)
