package split

import (
	"errors"
	"fmt"
)

// Method defines how an expense total is divided among participants.
type Method string

const (
	MethodEqually      Method = "EQUALLY"
	MethodByAmount     Method = "BY_AMOUNT"
	MethodByPercentage Method = "BY_PERCENTAGE"
)

// Input represents one participant going into an allocation, with the
// optional values the method may need.
type Input struct {
	UserID     int64    `json:"user_id"`
	Percentage *float64 `json:"percentage,omitempty"` // For BY_PERCENTAGE
	Amount     *float64 `json:"amount,omitempty"`     // For BY_AMOUNT
}

// Share is the calculated share for a single participant. Every input
// participant, including the payer, receives exactly one Share.
type Share struct {
	UserID     int64    `json:"user_id"`
	AmountOwed float64  `json:"amount_owed"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Strategy is the interface all split methods implement.
type Strategy interface {
	// Allocate computes every participant's share of the total.
	// The sum of the returned shares reconciles with the total within
	// money.Epsilon, or an error is returned and no shares are.
	Allocate(totalAmount float64, participants []Input) ([]Share, error)

	// Method returns the identifier for this strategy.
	Method() Method

	// Validate checks the inputs without allocating.
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates split strategies based on the requested method.
type Factory struct{}

// NewFactory creates a new factory instance.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the method.
func (f *Factory) Create(method Method) (Strategy, error) {
	switch method {
	case MethodEqually:
		return &EquallyStrategy{}, nil
	case MethodByAmount:
		return &ByAmountStrategy{}, nil
	case MethodByPercentage:
		return &ByPercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// CreateFromString creates a strategy from a raw string (API requests).
func (f *Factory) CreateFromString(method string) (Strategy, error) {
	return f.Create(Method(method))
}

var (
	ErrUnknownMethod        = errors.New("unknown split method")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingAmount        = errors.New("amount value required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrAmountSumMismatch    = errors.New("participant amounts do not reconcile with the total")
	ErrPercentSumMismatch   = errors.New("participant percentages do not sum to 100")
)

// sumMismatch builds a reconciliation error naming both sums so callers can
// show the user what was expected and what was supplied.
func sumMismatch(sentinel error, actual, expected float64) error {
	return fmt.Errorf("%w: got %.2f, expected %.2f", sentinel, actual, expected)
}
