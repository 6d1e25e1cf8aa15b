package activity

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository persists activity events in Postgres. It implements Recorder.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new activity repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts a new event into the audit log.
func (r *Repository) Record(ctx context.Context, e Event) error {
	query := `
		INSERT INTO activity_events
			(id, actor_id, actor_name, action, details, related_expense_id, related_member_id, previous_value, new_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ActorID,
		e.ActorName,
		e.Action,
		e.Details,
		e.RelatedExpenseID,
		e.RelatedMemberID,
		e.PreviousValue,
		e.NewValue,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity event: %w", err)
	}

	return nil
}

// ListByUserID retrieves events a user acted in or was affected by,
// newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Event, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*) FROM activity_events
		WHERE actor_id = $1 OR related_member_id = $1
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity events: %w", err)
	}

	query := `
		SELECT id, actor_id, actor_name, action, details, related_expense_id, related_member_id, previous_value, new_value, created_at
		FROM activity_events
		WHERE actor_id = $1 OR related_member_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		if err := rows.Scan(
			&event.ID,
			&event.ActorID,
			&event.ActorName,
			&event.Action,
			&event.Details,
			&event.RelatedExpenseID,
			&event.RelatedMemberID,
			&event.PreviousValue,
			&event.NewValue,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, event)
	}

	return events, total, nil
}
