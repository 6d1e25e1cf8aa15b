package split

import "github.com/yzeid/tally/internal/money"

// =============================================================================
// EQUALLY SPLIT STRATEGY
// Divides the total evenly; the last participant absorbs the rounding remainder
// =============================================================================

// EquallyStrategy implements Strategy for even splits.
type EquallyStrategy struct{}

// Method returns the split method identifier.
func (s *EquallyStrategy) Method() Method {
	return MethodEqually
}

// Validate checks if the inputs are valid for an even split.
func (s *EquallyStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Allocate gives floor(total/n, 2dp) to every participant except the last,
// who receives the remainder. This guarantees the shares reconcile exactly
// with the total despite rounding. Whichever participant is last in the
// input ordering absorbs the remainder; callers relying on who gets the
// extra cent must order their input accordingly.
func (s *EquallyStrategy) Allocate(totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	n := len(participants)
	perPerson := money.Floor2(totalAmount / float64(n))

	shares := make([]Share, n)
	var distributed float64
	for i, p := range participants {
		amount := perPerson
		if i == n-1 {
			amount = money.Round2(totalAmount - distributed)
		}
		distributed = money.Round2(distributed + amount)
		shares[i] = Share{UserID: p.UserID, AmountOwed: amount}
	}

	return shares, nil
}
