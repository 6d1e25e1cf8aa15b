package activity

import "context"

// Store is what the service needs from persistence.
type Store interface {
	Recorder
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Event, int, error)
}

// Service handles the activity feed.
type Service struct {
	store Store
}

// NewService creates a new activity service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record appends an event to the audit log.
func (s *Service) Record(ctx context.Context, e Event) error {
	return s.store.Record(ctx, e)
}

// ListByUserID retrieves a user's activity feed.
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByUserID(ctx, userID, perPage, offset)
}
