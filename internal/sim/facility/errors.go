package facility

import "errors"

var (
	ErrInsufficientArea = errors.New("insufficient area")
	ErrZoneAtCapacity   = errors.New("zone at capacity")
	ErrMissingMethod    = errors.New("zone requires a cultivation method")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidArea      = errors.New("area must be positive")
	ErrInvalidCycle     = errors.New("light cycle must sum to 24 hours")
	ErrNoSuchGroup      = errors.New("no device group for blueprint")
	ErrGroupBroken      = errors.New("every device in group is broken")
	ErrZonesNotAllowed  = errors.New("room purpose does not allow zones")
	ErrNotFound         = errors.New("not found")
)
