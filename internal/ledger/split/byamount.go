package split

import "github.com/yzeid/tally/internal/money"

// =============================================================================
// BY-AMOUNT SPLIT STRATEGY
// Each participant owes an exact caller-supplied amount (must sum to total)
// =============================================================================

// ByAmountStrategy implements Strategy for exact amount splits.
type ByAmountStrategy struct{}

// Method returns the split method identifier.
func (s *ByAmountStrategy) Method() Method {
	return MethodByAmount
}

// Validate checks that every participant has an amount and the amounts
// reconcile with the total within money.Epsilon.
func (s *ByAmountStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		sum += *p.Amount
	}

	if !money.Equal(sum, totalAmount) {
		return sumMismatch(ErrAmountSumMismatch, sum, totalAmount)
	}

	return nil
}

// Allocate passes the supplied amounts through unchanged; the only work
// here is validation.
func (s *ByAmountStrategy) Allocate(totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p.UserID, AmountOwed: money.Round2(*p.Amount)}
	}

	return shares, nil
}
