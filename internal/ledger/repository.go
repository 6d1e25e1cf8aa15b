package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/yzeid/tally/internal/ledger/split"
)

// Repository handles ledger data persistence. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new ledger repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const ledgerColumns = `
	id, original_expense_id, original_expense_description, total_amount, currency,
	split_method, paid_by, group_id, group_name, notes, involved_user_ids, created_at, updated_at
`

func scanLedger(row interface{ Scan(...interface{}) error }) (*Ledger, error) {
	l := &Ledger{}
	var involved pq.Int64Array
	err := row.Scan(
		&l.ID,
		&l.ExpenseID,
		&l.Description,
		&l.TotalAmount,
		&l.Currency,
		&l.SplitMethod,
		&l.PaidBy,
		&l.GroupID,
		&l.GroupName,
		&l.Notes,
		&involved,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.InvolvedUserIDs = involved
	return l, nil
}

// Create inserts a ledger and its participants in one transaction.
func (r *Repository) Create(ctx context.Context, l *Ledger) (*Ledger, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ledgers
			(original_expense_id, original_expense_description, total_amount, currency,
			 split_method, paid_by, group_id, group_name, notes, involved_user_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + ledgerColumns

	created, err := scanLedger(tx.QueryRowContext(ctx, query,
		l.ExpenseID,
		l.Description,
		l.TotalAmount,
		l.Currency,
		l.SplitMethod,
		l.PaidBy,
		l.GroupID,
		l.GroupName,
		l.Notes,
		pq.Array(l.InvolvedUserIDs),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	for i, p := range l.Participants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_participants (ledger_id, user_id, amount_owed, percentage, is_settled, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, created.ID, p.UserID, p.AmountOwed, p.Percentage, p.IsSettled, i)
		if err != nil {
			return nil, fmt.Errorf("failed to create participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger: %w", err)
	}

	created.Participants = l.Participants
	return created, nil
}

// GetByID retrieves a ledger with its participants.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE id = $1`

	l, err := scanLedger(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	if l.Participants, err = r.participants(ctx, l.ID); err != nil {
		return nil, err
	}

	return l, nil
}

// participants loads the participant rows in their stored order. Position
// order is load-bearing: it decides who absorbs the equal-split remainder
// on share updates.
func (r *Repository) participants(ctx context.Context, ledgerID int64) ([]*Participant, error) {
	query := `
		SELECT user_id, amount_owed, percentage, is_settled
		FROM ledger_participants
		WHERE ledger_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(&p.UserID, &p.AmountOwed, &p.Percentage, &p.IsSettled); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, nil
}

// ListByGroupID retrieves all ledgers tagged to a group.
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64) ([]*Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE group_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, groupID)
}

// ListInvolvingUser retrieves all ledgers the user appears in, via the
// involved_user_ids index column.
func (r *Repository) ListInvolvingUser(ctx context.Context, userID int64) ([]*Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE $1 = ANY(involved_user_ids) ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *Repository) list(ctx context.Context, query string, arg interface{}) ([]*Ledger, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}

	for _, l := range ledgers {
		if l.Participants, err = r.participants(ctx, l.ID); err != nil {
			return nil, err
		}
	}

	return ledgers, nil
}

// UpdateShares rewrites the split method, notes, and every participant's
// share in one transaction. The row is locked first so concurrent share
// updates serialize instead of interleaving.
func (r *Repository) UpdateShares(ctx context.Context, id int64, method split.Method, notes *string, participants []*Participant) (*Ledger, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM ledgers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}

	if notes != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE ledgers SET split_method = $2, notes = $3, updated_at = NOW() WHERE id = $1`,
			id, method, *notes)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE ledgers SET split_method = $2, updated_at = NOW() WHERE id = $1`,
			id, method)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	for _, p := range participants {
		res, err := tx.ExecContext(ctx, `
			UPDATE ledger_participants SET amount_owed = $3, percentage = $4
			WHERE ledger_id = $1 AND user_id = $2
		`, id, p.UserID, p.AmountOwed, p.Percentage)
		if err != nil {
			return nil, fmt.Errorf("failed to update participant %d: %w", p.UserID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("%w: user %d is not a participant", ErrParticipantSetFixed, p.UserID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit share update: %w", err)
	}

	return r.GetByID(ctx, id)
}

// SetParticipantSettled flips one participant's settled flag with a
// read-modify-write under row locks, so flips on sibling participants of
// the same ledger never clobber each other.
func (r *Repository) SetParticipantSettled(ctx context.Context, ledgerID, userID int64, settled bool) (*Ledger, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current bool
	err = tx.QueryRowContext(ctx, `
		SELECT is_settled FROM ledger_participants
		WHERE ledger_id = $1 AND user_id = $2
		FOR UPDATE
	`, ledgerID, userID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to lock participant: %w", err)
	}

	if current != settled {
		_, err = tx.ExecContext(ctx, `
			UPDATE ledger_participants SET is_settled = $3
			WHERE ledger_id = $1 AND user_id = $2
		`, ledgerID, userID, settled)
		if err != nil {
			return nil, fmt.Errorf("failed to update settlement flag: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE ledgers SET updated_at = NOW() WHERE id = $1`, ledgerID)
		if err != nil {
			return nil, fmt.Errorf("failed to touch ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement update: %w", err)
	}

	return r.GetByID(ctx, ledgerID)
}

// Delete removes a ledger and its participants.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_participants WHERE ledger_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM ledgers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrLedgerNotFound
	}

	return tx.Commit()
}
