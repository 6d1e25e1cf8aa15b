package balance

import (
	"sort"

	"github.com/yzeid/tally/internal/expense"
	"github.com/yzeid/tally/internal/ledger"
	"github.com/yzeid/tally/internal/money"
)

// currencyKey identifies one side of a user's position in one currency.
type currencyKey struct {
	userID   int64
	currency string
}

// Compute folds a snapshot of expenses and settlement ledgers into net
// per-user, per-currency balances. It is a pure read-only projection: the
// same inputs always produce the same output, and it may run concurrently
// with anything.
//
// An expense with no ledger is an un-split direct payment and credits its
// payer in full. A ledger credits its payer with the outstanding
// (unsettled) total and debits each unsettled non-payer participant.
// Settled participants contribute to neither side. Currencies with no
// activity are absent, and positions below money.Epsilon are dropped so
// rounding noise never shows up as phantom debt.
func Compute(expenses []*expense.Expense, ledgers []*ledger.Ledger) []NetBalance {
	splitExpenses := make(map[int64]bool, len(ledgers))
	for _, l := range ledgers {
		splitExpenses[l.ExpenseID] = true
	}

	paid := make(map[currencyKey]float64)
	owes := make(map[currencyKey]float64)

	for _, e := range expenses {
		if splitExpenses[e.ID] {
			continue
		}
		paid[currencyKey{e.PayerID, e.Currency}] += e.Amount
	}

	for _, l := range ledgers {
		var outstanding float64
		for _, p := range l.Participants {
			if p.IsSettled {
				continue
			}
			outstanding += p.AmountOwed
			if p.UserID != l.PaidBy {
				owes[currencyKey{p.UserID, l.Currency}] += p.AmountOwed
			}
		}
		paid[currencyKey{l.PaidBy, l.Currency}] += outstanding
	}

	net := make(map[currencyKey]float64, len(paid)+len(owes))
	for k, v := range paid {
		net[k] += v
	}
	for k, v := range owes {
		net[k] -= v
	}

	balances := make([]NetBalance, 0, len(net))
	for k, v := range net {
		v = money.Round2(v)
		if money.IsZero(v) {
			continue
		}
		balances = append(balances, NetBalance{UserID: k.userID, Currency: k.currency, Amount: v})
	}

	// Deterministic ordering so repeated runs over the same snapshot are
	// byte-identical.
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].UserID != balances[j].UserID {
			return balances[i].UserID < balances[j].UserID
		}
		return balances[i].Currency < balances[j].Currency
	})

	return balances
}
