package expense

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yzeid/tally/internal/money"
)

// Common errors
var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrNotPayer         = errors.New("only the payer can modify this expense")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter uppercase code")
	ErrInvalidFrequency = errors.New("unsupported recurrence frequency")
)

// Store is the persistence seam for expenses.
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
	ListByPayerID(ctx context.Context, payerID int64, limit, offset int) ([]*Expense, int, error)
	Update(ctx context.Context, id int64, req *UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	ListDueRecurring(ctx context.Context, now time.Time) ([]*Expense, error)
	AdvanceRecurrence(ctx context.Context, id int64, next time.Time) error
}

// Service handles expense business logic.
type Service struct {
	store Store
}

// NewService creates a new expense service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create records a new expense paid by payerID.
func (s *Service) Create(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*Expense, error) {
	if !money.ValidCurrency(req.Currency) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
	}

	e := &Expense{
		PayerID:     payerID,
		Description: req.Description,
		Amount:      money.Round2(req.Amount),
		Currency:    req.Currency,
		Category:    req.Category,
		Date:        req.Date,
		GroupID:     req.GroupID,
	}

	if req.Recurrence != nil {
		freq := Frequency(req.Recurrence.Frequency)
		if !freq.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, req.Recurrence.Frequency)
		}
		e.Recurrence = &Recurrence{
			Frequency: freq,
			EndDate:   req.Recurrence.EndDate,
			NextDate:  NextOccurrence(freq, req.Date),
		}
	}

	return s.store.Create(ctx, e)
}

// GetByID retrieves an expense by its ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// ListByGroupID retrieves expenses for a group, paginated.
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByGroupID(ctx, groupID, perPage, offset)
}

// ListByPayerID retrieves a user's own expenses, paginated.
func (s *Service) ListByPayerID(ctx context.Context, payerID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByPayerID(ctx, payerID, perPage, offset)
}

// Update modifies an expense's own fields. Only the payer may edit.
func (s *Service) Update(ctx context.Context, id, userID int64, req *UpdateExpenseRequest) (*Expense, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.PayerID != userID {
		return nil, ErrNotPayer
	}

	return s.store.Update(ctx, id, req)
}

// Delete removes an expense. Only the payer may delete. The expense's
// settlement ledger, if one exists, is deliberately left in place: the
// ledger keeps its denormalized description and continues to settle
// independently. See the ledgers API for removing a split.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.PayerID != userID {
		return ErrNotPayer
	}

	return s.store.Delete(ctx, id)
}

// MaterializeDue creates concrete expenses for every recurring expense
// whose next occurrence has arrived, advancing each series one period per
// call per series. Returns the number of expenses created.
func (s *Service) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due recurring expenses: %w", err)
	}

	created := 0
	for _, template := range due {
		rec := template.Recurrence
		if rec == nil || !rec.Due(now) {
			continue
		}

		clone := &Expense{
			PayerID:     template.PayerID,
			Description: template.Description,
			Amount:      template.Amount,
			Currency:    template.Currency,
			Category:    template.Category,
			Date:        rec.NextDate,
			GroupID:     template.GroupID,
		}
		if _, err := s.store.Create(ctx, clone); err != nil {
			log.Printf("warning: failed to materialize recurring expense %d: %v", template.ID, err)
			continue
		}

		next := NextOccurrence(rec.Frequency, rec.NextDate)
		if err := s.store.AdvanceRecurrence(ctx, template.ID, next); err != nil {
			log.Printf("warning: failed to advance recurrence for expense %d: %v", template.ID, err)
			continue
		}
		created++
	}

	return created, nil
}
