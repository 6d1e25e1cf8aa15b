package expense

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memStore is an in-memory Store for exercising the service without a
// database.
type memStore struct {
	nextID   int64
	expenses map[int64]*Expense
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, expenses: make(map[int64]*Expense)}
}

func (m *memStore) Create(_ context.Context, e *Expense) (*Expense, error) {
	cp := *e
	cp.ID = m.nextID
	m.nextID++
	m.expenses[cp.ID] = &cp
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (m *memStore) ListByGroupID(_ context.Context, groupID int64, _, _ int) ([]*Expense, int, error) {
	var out []*Expense
	for _, e := range m.expenses {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *memStore) ListByPayerID(_ context.Context, payerID int64, _, _ int) ([]*Expense, int, error) {
	var out []*Expense
	for _, e := range m.expenses {
		if e.PayerID == payerID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *memStore) Update(_ context.Context, id int64, req *UpdateExpenseRequest) (*Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	return e, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *memStore) ListDueRecurring(_ context.Context, now time.Time) ([]*Expense, error) {
	var out []*Expense
	for _, e := range m.expenses {
		if e.Recurrence != nil && e.Recurrence.Due(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) AdvanceRecurrence(_ context.Context, id int64, next time.Time) error {
	e, ok := m.expenses[id]
	if !ok {
		return ErrExpenseNotFound
	}
	e.Recurrence.NextDate = next
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateExpenseRequest{
		Description: "Coffee", Amount: 4.5, Currency: "usd", Date: date(2026, 3, 1),
	})
	if !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidCurrency)
	}

	_, err = svc.Create(ctx, 1, &CreateExpenseRequest{
		Description: "Rent", Amount: 800, Currency: "USD", Date: date(2026, 3, 1),
		Recurrence: &RecurrenceInput{Frequency: "HOURLY"},
	})
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidFrequency)
	}
}

func TestCreateRecurringSetsNextDate(t *testing.T) {
	svc := NewService(newMemStore())

	e, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		Description: "Rent", Amount: 800, Currency: "USD", Date: date(2026, 3, 1),
		Recurrence: &RecurrenceInput{Frequency: "MONTHLY"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if e.Recurrence == nil {
		t.Fatal("expense should carry its recurrence")
	}
	if want := date(2026, 4, 1); !e.Recurrence.NextDate.Equal(want) {
		t.Errorf("next date = %v, want %v", e.Recurrence.NextDate, want)
	}
}

func TestOnlyPayerCanModify(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, &CreateExpenseRequest{
		Description: "Taxi", Amount: 18, Currency: "USD", Date: date(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(ctx, e.ID, 2); !errors.Is(err, ErrNotPayer) {
		t.Errorf("delete by non-payer: error = %v, want %v", err, ErrNotPayer)
	}
	desc := "Cab"
	if _, err := svc.Update(ctx, e.ID, 2, &UpdateExpenseRequest{Description: &desc}); !errors.Is(err, ErrNotPayer) {
		t.Errorf("update by non-payer: error = %v, want %v", err, ErrNotPayer)
	}
	if err := svc.Delete(ctx, e.ID, 1); err != nil {
		t.Errorf("delete by payer returned error: %v", err)
	}
}

func TestMaterializeDue(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, &CreateExpenseRequest{
		Description: "Rent", Amount: 800, Currency: "USD", Date: date(2026, 3, 1),
		Recurrence: &RecurrenceInput{Frequency: "MONTHLY"},
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(ctx, 2, &CreateExpenseRequest{
		Description: "Gym", Amount: 30, Currency: "USD", Date: date(2026, 3, 20),
		Recurrence: &RecurrenceInput{Frequency: "MONTHLY"},
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Only the rent's next occurrence (Apr 1) has arrived by Apr 5.
	created, err := svc.MaterializeDue(ctx, date(2026, 4, 5))
	if err != nil {
		t.Fatalf("MaterializeDue returned error: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	var clone *Expense
	for _, e := range store.expenses {
		if e.Description == "Rent" && e.Recurrence == nil {
			clone = e
		}
	}
	if clone == nil {
		t.Fatal("materialized expense not found")
	}
	if !clone.Date.Equal(date(2026, 4, 1)) {
		t.Errorf("clone date = %v, want 2026-04-01", clone.Date)
	}
	if clone.Amount != 800 || clone.PayerID != 1 {
		t.Errorf("clone should copy amount and payer, got %+v", clone)
	}

	// The series advanced one period, so an immediate re-run creates
	// nothing more.
	created, err = svc.MaterializeDue(ctx, date(2026, 4, 5))
	if err != nil {
		t.Fatalf("second MaterializeDue returned error: %v", err)
	}
	if created != 0 {
		t.Errorf("second run created %d, want 0", created)
	}
}

func TestMaterializeDueStopsAtEndDate(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	end := date(2026, 3, 15)
	if _, err := svc.Create(ctx, 1, &CreateExpenseRequest{
		Description: "Trial", Amount: 10, Currency: "USD", Date: date(2026, 3, 1),
		Recurrence: &RecurrenceInput{Frequency: "WEEKLY", EndDate: &end},
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	created, err := svc.MaterializeDue(ctx, date(2026, 4, 1))
	if err != nil {
		t.Fatalf("MaterializeDue returned error: %v", err)
	}
	if created != 0 {
		t.Errorf("expired series created %d expenses, want 0", created)
	}
}
