package balance

import (
	"context"

	"github.com/yzeid/tally/internal/expense"
	"github.com/yzeid/tally/internal/ledger"
	"github.com/yzeid/tally/internal/money"
)

// ExpenseSource provides the expense snapshots the projection consumes.
type ExpenseSource interface {
	ListAllByGroupID(ctx context.Context, groupID int64) ([]*expense.Expense, error)
	ListAllByPayerID(ctx context.Context, payerID int64) ([]*expense.Expense, error)
}

// LedgerSource provides the ledger snapshots the projection consumes.
type LedgerSource interface {
	ListByGroupID(ctx context.Context, groupID int64) ([]*ledger.Ledger, error)
	ListInvolvingUser(ctx context.Context, userID int64) ([]*ledger.Ledger, error)
}

// Service computes balances and settlement plans over committed
// expense/ledger snapshots. It holds no state and never writes.
type Service struct {
	expenses ExpenseSource
	ledgers  LedgerSource
}

// NewService creates a new balance service.
func NewService(expenses ExpenseSource, ledgers LedgerSource) *Service {
	return &Service{expenses: expenses, ledgers: ledgers}
}

// ForGroup computes net balances for every member with activity in the
// group, per currency.
func (s *Service) ForGroup(ctx context.Context, groupID int64) ([]NetBalance, error) {
	expenses, err := s.expenses.ListAllByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.ledgers.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return Compute(expenses, ledgers), nil
}

// ForUser computes a user's own net position per currency across all the
// ledgers they are involved in and their un-split expenses.
func (s *Service) ForUser(ctx context.Context, userID int64) ([]NetBalance, error) {
	expenses, err := s.expenses.ListAllByPayerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.ledgers.ListInvolvingUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := Compute(expenses, ledgers)
	var mine []NetBalance
	for _, b := range all {
		if b.UserID == userID && !money.IsZero(b.Amount) {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

// SimplifiedForGroup computes the group's settlement plan: the transfers
// that settle everyone, per currency.
func (s *Service) SimplifiedForGroup(ctx context.Context, groupID int64) ([]Transfer, error) {
	balances, err := s.ForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return Simplify(balances), nil
}
