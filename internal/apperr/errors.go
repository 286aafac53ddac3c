package apperr

import "errors"

// Generic failures shared by every resource.
var (
	// ErrInvalid is returned when input fails validation, before any store access.
	ErrInvalid = errors.New("validation failed")
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness or concurrent-write conflict that could not be classified further.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the acting deliveryman does not own the delivery.
	ErrForbidden = errors.New("forbidden")
)

// Delivery lifecycle failures.
var (
	ErrAlreadyRetrieved       = errors.New("delivery already retrieved")
	ErrAlreadyDelivered       = errors.New("delivery already delivered")
	ErrAlreadyCancelled       = errors.New("delivery already cancelled")
	ErrNotYetRetrieved        = errors.New("delivery not retrieved yet")
	ErrOutsideRetrievalWindow = errors.New("retrieval allowed only between opening hours")
	ErrRateLimitExceeded      = errors.New("daily retrieval limit reached")
)
