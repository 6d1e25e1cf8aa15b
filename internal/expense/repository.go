package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository handles expense data persistence. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `
	id, payer_id, description, amount, currency, category, date, group_id,
	recur_frequency, recur_end_date, recur_next_date, created_at, updated_at
`

func scanExpense(row interface{ Scan(...interface{}) error }) (*Expense, error) {
	e := &Expense{}
	var freq *string
	var endDate, nextDate *time.Time
	err := row.Scan(
		&e.ID,
		&e.PayerID,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&e.Category,
		&e.Date,
		&e.GroupID,
		&freq,
		&endDate,
		&nextDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if freq != nil && nextDate != nil {
		e.Recurrence = &Recurrence{
			Frequency: Frequency(*freq),
			EndDate:   endDate,
			NextDate:  *nextDate,
		}
	}
	return e, nil
}

// Create inserts a new expense into the database.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	query := `
		INSERT INTO expenses
			(payer_id, description, amount, currency, category, date, group_id,
			 recur_frequency, recur_end_date, recur_next_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + expenseColumns

	var freq *string
	var endDate, nextDate *time.Time
	if e.Recurrence != nil {
		f := string(e.Recurrence.Frequency)
		freq = &f
		endDate = e.Recurrence.EndDate
		nextDate = &e.Recurrence.NextDate
	}

	created, err := scanExpense(r.db.QueryRowContext(ctx, query,
		e.PayerID, e.Description, e.Amount, e.Currency, e.Category, e.Date, e.GroupID,
		freq, endDate, nextDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return created, nil
}

// GetByID retrieves an expense by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// ListByGroupID retrieves expenses for a group, paginated.
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	return r.listPaged(ctx, `group_id = $1`, groupID, limit, offset)
}

// ListByPayerID retrieves expenses paid by a user, paginated.
func (r *Repository) ListByPayerID(ctx context.Context, payerID int64, limit, offset int) ([]*Expense, int, error) {
	return r.listPaged(ctx, `payer_id = $1`, payerID, limit, offset)
}

func (r *Repository) listPaged(ctx context.Context, where string, arg interface{}, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where + `
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListAllByGroupID retrieves every expense for a group; used by the
// balance projection, which needs the full set.
func (r *Repository) ListAllByGroupID(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE group_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// ListAllByPayerID retrieves every expense paid by a user.
func (r *Repository) ListAllByPayerID(ctx context.Context, payerID int64) ([]*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE payer_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*Expense, error) {
	var expenses []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Update applies the optional fields of req to an expense.
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateExpenseRequest) (*Expense, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Amount != nil {
		add("amount", *req.Amount)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Date != nil {
		add("date", *req.Date)
	}

	query := `UPDATE expenses SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + expenseColumns

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return e, nil
}

// Delete removes an expense. Any settlement ledger referencing it is left
// untouched.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// ListDueRecurring retrieves recurring expenses whose next occurrence has
// arrived and whose series has not ended.
func (r *Repository) ListDueRecurring(ctx context.Context, now time.Time) ([]*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE recur_frequency IS NOT NULL
		  AND recur_next_date <= $1
		  AND (recur_end_date IS NULL OR recur_end_date >= $1)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due recurring expenses: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// AdvanceRecurrence moves a recurring expense's next occurrence forward.
func (r *Repository) AdvanceRecurrence(ctx context.Context, id int64, next time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET recur_next_date = $2, updated_at = NOW() WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("failed to advance recurrence: %w", err)
	}
	return nil
}
