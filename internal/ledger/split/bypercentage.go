package split

import "github.com/yzeid/tally/internal/money"

// =============================================================================
// BY-PERCENTAGE SPLIT STRATEGY
// Divides the total according to caller-supplied percentages
// =============================================================================

// ByPercentageStrategy implements Strategy for percentage-based splits.
type ByPercentageStrategy struct{}

// Method returns the split method identifier.
func (s *ByPercentageStrategy) Method() Method {
	return MethodByPercentage
}

// Validate checks that every participant has a percentage in [0, 100] and
// the percentages sum to 100 within money.Epsilon.
func (s *ByPercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		sum += *p.Percentage
	}

	if !money.Equal(sum, 100) {
		return sumMismatch(ErrPercentSumMismatch, sum, 100)
	}

	return nil
}

// Allocate computes round2(total * pct / 100) per participant. Unlike the
// EQUALLY strategy, no remainder fix-up is applied to the last participant;
// the sum can differ from the total by sub-cent rounding noise, which stays
// within money.Epsilon for any percentage set that validates.
func (s *ByPercentageStrategy) Allocate(totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		pct := *p.Percentage
		shares[i] = Share{
			UserID:     p.UserID,
			AmountOwed: money.Round2(totalAmount * pct / 100),
			Percentage: &pct,
		}
	}

	return shares, nil
}
