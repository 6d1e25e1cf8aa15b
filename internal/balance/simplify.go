package balance

import (
	"sort"

	"github.com/yzeid/tally/internal/money"
)

// party is one side of the matching: a debtor or creditor with the
// absolute amount still open.
type party struct {
	userID int64
	amount float64
}

// Simplify converts net balances into a short list of pairwise transfers
// that settles everyone, using greedy largest-first matching per currency.
// Greedy matching is not guaranteed transfer-count minimal, but it is
// deterministic and matches what users have always been shown; do not
// replace it with an optimal matcher without changing the tests.
//
// Balances in different currencies are never netted against each other;
// each currency is settled independently. Output is grouped by currency in
// lexicographic order, then descending by amount.
func Simplify(balances []NetBalance) []Transfer {
	byCurrency := make(map[string][]NetBalance)
	for _, b := range balances {
		byCurrency[b.Currency] = append(byCurrency[b.Currency], b)
	}

	currencies := make([]string, 0, len(byCurrency))
	for c := range byCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	var transfers []Transfer
	for _, currency := range currencies {
		transfers = append(transfers, simplifyCurrency(currency, byCurrency[currency])...)
	}
	return transfers
}

func simplifyCurrency(currency string, balances []NetBalance) []Transfer {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.Amount < -money.Epsilon:
			debtors = append(debtors, party{userID: b.UserID, amount: -b.Amount})
		case b.Amount > money.Epsilon:
			creditors = append(creditors, party{userID: b.UserID, amount: b.Amount})
		}
	}

	// Largest first; ties broken by user ID so the plan is deterministic.
	byMagnitude := func(parties []party) {
		sort.Slice(parties, func(i, j int) bool {
			if parties[i].amount != parties[j].amount {
				return parties[i].amount > parties[j].amount
			}
			return parties[i].userID < parties[j].userID
		})
	}
	byMagnitude(debtors)
	byMagnitude(creditors)

	var transfers []Transfer
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := money.Round2(min(debtor.amount, creditor.amount))
		transfers = append(transfers, Transfer{
			FromUserID: debtor.userID,
			ToUserID:   creditor.userID,
			Amount:     amount,
			Currency:   currency,
		})

		debtor.amount = money.Round2(debtor.amount - amount)
		creditor.amount = money.Round2(creditor.amount - amount)

		// Drop whichever side is exhausted; any residual below Epsilon is
		// rounding noise and is discarded with it.
		if money.IsZero(debtor.amount) {
			debtors = debtors[1:]
		}
		if money.IsZero(creditor.amount) {
			creditors = creditors[1:]
		}

		byMagnitude(debtors)
		byMagnitude(creditors)
	}

	// Descending by amount within the currency group.
	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].Amount != transfers[j].Amount {
			return transfers[i].Amount > transfers[j].Amount
		}
		if transfers[i].FromUserID != transfers[j].FromUserID {
			return transfers[i].FromUserID < transfers[j].FromUserID
		}
		return transfers[i].ToUserID < transfers[j].ToUserID
	})

	return transfers
}
