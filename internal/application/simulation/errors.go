package simulation

import "errors"

var (
	ErrNonPositiveInputs   = errors.New("Pre-money valuation, investment amount and share count must be positive")
	ErrPoolPercentageRange = errors.New("Option pool percentage must be at least 0 and below 1")
	ErrContributionSum     = errors.New("Investor contributions must sum to the investment amount")
)
