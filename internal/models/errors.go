package models

import "errors"

// Common errors used throughout the application
var (
	ErrNotAuthenticated     = errors.New("user is not authenticated")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTicketLimitExceeded  = errors.New("ticket limit for this event exceeded")
	ErrQuantityLocked       = errors.New("quantity of a multi-seat group cannot be edited")
	ErrMissingSeatSelection = errors.New("seat-managed item carries no seat selection")
	ErrInvalidPlaceOrSector = errors.New("item carries no valid place or quantity")
	ErrNoPendingAttempt     = errors.New("no pending checkout attempt")
)
