package equity

import "errors"

var (
	ErrQuantityNotPositive = errors.New("Quantity must be a positive number")
	ErrPriceNegative       = errors.New("Price per share cannot be negative")
	ErrShareClassNotFound  = errors.New("Share class not found")
	ErrShareClassInactive  = errors.New("Share class is not active")
	ErrShareholderNotFound = errors.New("Shareholder not found")
	ErrSameShareholder     = errors.New("Cannot transfer shares to the same shareholder")
	ErrSameClass           = errors.New("Cannot convert shares into the same class")
	ErrNotConvertible      = errors.New("Share class does not convert into the requested class")
	ErrInsufficientBalance = errors.New("Insufficient active share balance")
	ErrConcurrencyConflict = errors.New("Concurrent mutation detected, retry the operation")
)
