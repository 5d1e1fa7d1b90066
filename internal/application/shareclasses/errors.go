package shareclasses

import "errors"

var (
	ErrClassNotFound        = errors.New("Share class not found")
	ErrCodeRequired         = errors.New("Class code is required (uppercase letters, digits and hyphens)")
	ErrNameRequired         = errors.New("Class name is required")
	ErrCodeTaken            = errors.New("A share class with this code already exists for the company")
	ErrConversionIncomplete = errors.New("Convertible classes require a positive conversion ratio and a target class")
	ErrConversionSelf       = errors.New("A share class cannot convert into itself")
	ErrVotesWithoutRights   = errors.New("Non-voting classes cannot carry votes per share")
	ErrNegativePreference   = errors.New("Liquidation preference cannot be negative")
	ErrUnknownAntiDilution  = errors.New("Unknown anti-dilution kind")
)
