package ledger

import "errors"

var (
	ErrQuantityNotPositive = errors.New("Quantity must be a positive number")
	ErrPriceNegative       = errors.New("Price per share cannot be negative")
	ErrUnknownType         = errors.New("Unknown transaction type")
	ErrTransactionNotFound = errors.New("Transaction not found")
)
