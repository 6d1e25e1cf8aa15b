package balance

import (
	"reflect"
	"testing"
)

func TestSimplifyLargestFirst(t *testing.T) {
	balances := []NetBalance{
		{UserID: 1, Currency: "USD", Amount: -30},
		{UserID: 2, Currency: "USD", Amount: 10},
		{UserID: 3, Currency: "USD", Amount: 20},
	}

	got := Simplify(balances)

	// The largest debtor pays the largest creditor first.
	want := []Transfer{
		{FromUserID: 1, ToUserID: 3, Amount: 20, Currency: "USD"},
		{FromUserID: 1, ToUserID: 2, Amount: 10, Currency: "USD"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Simplify = %v, want %v", got, want)
	}
}

func TestSimplifyTwoParties(t *testing.T) {
	balances := []NetBalance{
		{UserID: 1, Currency: "USD", Amount: 42.50},
		{UserID: 2, Currency: "USD", Amount: -42.50},
	}

	got := Simplify(balances)

	want := []Transfer{
		{FromUserID: 2, ToUserID: 1, Amount: 42.50, Currency: "USD"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Simplify = %v, want %v", got, want)
	}
}

func TestSimplifyEmptyAndSettled(t *testing.T) {
	if got := Simplify(nil); len(got) != 0 {
		t.Errorf("Simplify(nil) = %v, want none", got)
	}

	// Positions inside the epsilon band produce no transfers.
	balances := []NetBalance{
		{UserID: 1, Currency: "USD", Amount: 0.004},
		{UserID: 2, Currency: "USD", Amount: -0.004},
	}
	if got := Simplify(balances); len(got) != 0 {
		t.Errorf("sub-epsilon balances produced transfers: %v", got)
	}
}

func TestSimplifyKeepsCurrenciesSeparate(t *testing.T) {
	balances := []NetBalance{
		{UserID: 1, Currency: "USD", Amount: -50},
		{UserID: 2, Currency: "USD", Amount: 50},
		{UserID: 1, Currency: "EUR", Amount: 30},
		{UserID: 2, Currency: "EUR", Amount: -30},
	}

	got := Simplify(balances)

	// EUR sorts before USD; no netting of user 1's positions across
	// currencies.
	want := []Transfer{
		{FromUserID: 2, ToUserID: 1, Amount: 30, Currency: "EUR"},
		{FromUserID: 1, ToUserID: 2, Amount: 50, Currency: "USD"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Simplify = %v, want %v", got, want)
	}
}

func TestSimplifyConservation(t *testing.T) {
	balances := []NetBalance{
		{UserID: 1, Currency: "USD", Amount: -17.25},
		{UserID: 2, Currency: "USD", Amount: -12.75},
		{UserID: 3, Currency: "USD", Amount: 8.40},
		{UserID: 4, Currency: "USD", Amount: 21.60},
	}

	transfers := Simplify(balances)

	// Applying the plan must zero everyone out.
	net := make(map[int64]float64)
	for _, b := range balances {
		net[b.UserID] = b.Amount
	}
	for _, tr := range transfers {
		net[tr.FromUserID] += tr.Amount
		net[tr.ToUserID] -= tr.Amount
	}
	for userID, remaining := range net {
		if remaining > 0.005 || remaining < -0.005 {
			t.Errorf("user %d left with %v after applying the plan", userID, remaining)
		}
	}

	for _, tr := range transfers {
		if tr.Amount <= 0 {
			t.Errorf("transfer with non-positive amount: %+v", tr)
		}
	}
}

func TestSimplifyDeterministicTieBreaks(t *testing.T) {
	balances := []NetBalance{
		{UserID: 3, Currency: "USD", Amount: -10},
		{UserID: 1, Currency: "USD", Amount: -10},
		{UserID: 5, Currency: "USD", Amount: 10},
		{UserID: 2, Currency: "USD", Amount: 10},
	}

	first := Simplify(balances)
	second := Simplify(balances)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated runs differ: %v vs %v", first, second)
	}

	// Equal magnitudes pair lowest user IDs first.
	want := []Transfer{
		{FromUserID: 1, ToUserID: 2, Amount: 10, Currency: "USD"},
		{FromUserID: 3, ToUserID: 5, Amount: 10, Currency: "USD"},
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("Simplify = %v, want %v", first, want)
	}
}
