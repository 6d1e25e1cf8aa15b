package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yzeid/tally/internal/activity"
	"github.com/yzeid/tally/internal/ledger/split"
	"github.com/yzeid/tally/internal/money"
)

// Common errors
var (
	ErrLedgerNotFound      = errors.New("ledger not found")
	ErrParticipantNotFound = errors.New("participant not found in ledger")
	ErrPayerNotParticipant = errors.New("payer must be one of the participants")
	ErrParticipantSetFixed = errors.New("participant set cannot change after creation")
	ErrInvalidCurrency     = errors.New("currency must be a 3-letter uppercase code")
)

// Store is the persistence seam for ledgers. All mutating methods are
// atomic over the single ledger involved: either the whole write commits
// or the ledger is left in its prior state.
type Store interface {
	Create(ctx context.Context, l *Ledger) (*Ledger, error)
	GetByID(ctx context.Context, id int64) (*Ledger, error)
	ListByGroupID(ctx context.Context, groupID int64) ([]*Ledger, error)
	ListInvolvingUser(ctx context.Context, userID int64) ([]*Ledger, error)
	UpdateShares(ctx context.Context, id int64, method split.Method, notes *string, participants []*Participant) (*Ledger, error)
	SetParticipantSettled(ctx context.Context, ledgerID, userID int64, settled bool) (*Ledger, error)
	Delete(ctx context.Context, id int64) error
}

// ProfileSource resolves display names for activity events.
type ProfileSource interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// Service handles settlement-ledger business logic.
type Service struct {
	store    Store
	factory  *split.Factory
	recorder activity.Recorder
	profiles ProfileSource
}

// NewService creates a new ledger service with dependencies injected.
func NewService(store Store, factory *split.Factory, recorder activity.Recorder, profiles ProfileSource) *Service {
	return &Service{
		store:    store,
		factory:  factory,
		recorder: recorder,
		profiles: profiles,
	}
}

// Create splits an expense: runs the allocator, marks the payer settled,
// computes the involved-user index, and persists the ledger atomically.
// Emits an EXPENSE_SPLIT_IN_GROUP event when the split is in a group.
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateLedgerRequest) (*Ledger, error) {
	if !money.ValidCurrency(req.Currency) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
	}

	strategy, err := s.factory.CreateFromString(req.SplitMethod)
	if err != nil {
		return nil, err
	}

	inputs := make([]split.Input, len(req.Participants))
	payerIncluded := false
	for i, p := range req.Participants {
		inputs[i] = p.ToSplitInput()
		if p.UserID == req.PaidBy {
			payerIncluded = true
		}
	}
	if !payerIncluded {
		return nil, ErrPayerNotParticipant
	}

	shares, err := strategy.Allocate(req.TotalAmount, inputs)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		ExpenseID:    req.ExpenseID,
		Description:  req.Description,
		TotalAmount:  money.Round2(req.TotalAmount),
		Currency:     req.Currency,
		SplitMethod:  strategy.Method(),
		PaidBy:       req.PaidBy,
		GroupID:      req.GroupID,
		GroupName:    req.GroupName,
		Notes:        req.Notes,
		Participants: make([]*Participant, len(shares)),
	}
	for i, share := range shares {
		l.Participants[i] = &Participant{
			UserID:     share.UserID,
			AmountOwed: share.AmountOwed,
			Percentage: share.Percentage,
			// The payer owes themselves nothing net.
			IsSettled: share.UserID == req.PaidBy,
		}
	}
	l.RecomputeInvolvedUserIDs()

	created, err := s.store.Create(ctx, l)
	if err != nil {
		return nil, err
	}

	if created.GroupID != nil {
		groupName := ""
		if created.GroupName != nil {
			groupName = *created.GroupName
		}
		details := fmt.Sprintf("%s split %q (%.2f %s) in %s",
			s.displayName(ctx, actorID), created.Description, created.TotalAmount, created.Currency, groupName)
		s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
			activity.ActionExpenseSplitInGroup, details,
			activity.WithExpense(created.ExpenseID)))
	}

	return created, nil
}

// GetByID retrieves a ledger by its ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Ledger, error) {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLedgerNotFound
	}
	return l, nil
}

// ListByGroupID retrieves all ledgers tagged to a group.
func (s *Service) ListByGroupID(ctx context.Context, groupID int64) ([]*Ledger, error) {
	return s.store.ListByGroupID(ctx, groupID)
}

// ListInvolvingUser retrieves all ledgers a user is involved in.
func (s *Service) ListInvolvingUser(ctx context.Context, userID int64) ([]*Ledger, error) {
	return s.store.ListInvolvingUser(ctx, userID)
}

// UpdateShares changes the split method and/or per-participant shares of an
// existing ledger. The participant identity set is immutable; allocation is
// re-run against the ledger's original total and rejected on mismatch
// exactly as at creation. The write is all-or-nothing.
func (s *Service) UpdateShares(ctx context.Context, actorID, ledgerID int64, req *UpdateSharesRequest) (*Ledger, error) {
	l, err := s.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	method := l.SplitMethod
	if req.SplitMethod != nil {
		method = split.Method(*req.SplitMethod)
	}
	strategy, err := s.factory.Create(method)
	if err != nil {
		return nil, err
	}

	inputs, err := shareInputsForUpdate(l, req.Shares)
	if err != nil {
		return nil, err
	}

	shares, err := strategy.Allocate(l.TotalAmount, inputs)
	if err != nil {
		return nil, err
	}

	updated := make([]*Participant, len(shares))
	for i, share := range shares {
		existing := l.Participant(share.UserID)
		updated[i] = &Participant{
			UserID:     share.UserID,
			AmountOwed: share.AmountOwed,
			Percentage: share.Percentage,
			IsSettled:  existing.IsSettled,
		}
	}

	result, err := s.store.UpdateShares(ctx, ledgerID, method, req.Notes, updated)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s changed the split of %q", s.displayName(ctx, actorID), l.Description)
	s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
		activity.ActionSplitSharesUpdated, details,
		activity.WithExpense(l.ExpenseID),
		activity.WithChange(string(l.SplitMethod), string(method))))

	return result, nil
}

// shareInputsForUpdate builds allocation inputs preserving the stored
// participant ordering, which determines who absorbs the EQUALLY rounding
// remainder. Supplied shares must cover exactly the existing participants.
func shareInputsForUpdate(l *Ledger, shares []*ShareInput) ([]split.Input, error) {
	if len(shares) == 0 {
		inputs := make([]split.Input, len(l.Participants))
		for i, p := range l.Participants {
			inputs[i] = split.Input{UserID: p.UserID}
		}
		return inputs, nil
	}

	byUser := make(map[int64]*ShareInput, len(shares))
	for _, sh := range shares {
		if l.Participant(sh.UserID) == nil {
			return nil, fmt.Errorf("%w: user %d is not a participant", ErrParticipantSetFixed, sh.UserID)
		}
		byUser[sh.UserID] = sh
	}
	if len(byUser) != len(l.Participants) {
		return nil, fmt.Errorf("%w: expected shares for all %d participants, got %d",
			ErrParticipantSetFixed, len(l.Participants), len(byUser))
	}

	inputs := make([]split.Input, len(l.Participants))
	for i, p := range l.Participants {
		inputs[i] = byUser[p.UserID].ToSplitInput()
	}
	return inputs, nil
}

// SetParticipantSettlement flips exactly one participant's settled flag via
// a transactional read-modify-write, so concurrent flips on sibling
// participants never clobber each other. Unsettling a settled share is
// supported but recorded as a reversal.
func (s *Service) SetParticipantSettlement(ctx context.Context, actorID, ledgerID, participantUserID int64, settled bool) (*Ledger, error) {
	l, err := s.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	p := l.Participant(participantUserID)
	if p == nil {
		return nil, fmt.Errorf("%w: user %d in ledger %d", ErrParticipantNotFound, participantUserID, ledgerID)
	}
	if p.IsSettled == settled {
		return l, nil
	}

	result, err := s.store.SetParticipantSettled(ctx, ledgerID, participantUserID, settled)
	if err != nil {
		return nil, err
	}

	verb := "settled"
	if !settled {
		verb = "reopened"
	}
	details := fmt.Sprintf("%s %s %s's share of %q",
		s.displayName(ctx, actorID), verb, s.displayName(ctx, participantUserID), l.Description)
	s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
		activity.ActionSettlementUpdated, details,
		activity.WithExpense(l.ExpenseID),
		activity.WithMember(participantUserID),
		activity.WithChange(settledLabel(p.IsSettled), settledLabel(settled))))

	return result, nil
}

// Delete removes the whole ledger; partial deletion is not supported.
func (s *Service) Delete(ctx context.Context, actorID, ledgerID int64) error {
	l, err := s.GetByID(ctx, ledgerID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ledgerID); err != nil {
		return err
	}

	details := fmt.Sprintf("%s deleted the split of %q", s.displayName(ctx, actorID), l.Description)
	s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
		activity.ActionSplitDeleted, details,
		activity.WithExpense(l.ExpenseID)))

	return nil
}

// record writes an activity event best-effort. A logging failure never
// rolls back the mutation that produced it.
func (s *Service) record(ctx context.Context, e activity.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		log.Printf("warning: failed to record %s activity event: %v", e.Action, err)
	}
}

func (s *Service) displayName(ctx context.Context, userID int64) string {
	if s.profiles != nil {
		if name, err := s.profiles.DisplayName(ctx, userID); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("user %d", userID)
}

func settledLabel(settled bool) string {
	if settled {
		return "settled"
	}
	return "unsettled"
}
