package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/yzeid/tally/internal/activity"
	"github.com/yzeid/tally/internal/ledger/split"
)

// memStore is an in-memory Store for exercising the service without a
// database.
type memStore struct {
	nextID  int64
	ledgers map[int64]*Ledger
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, ledgers: make(map[int64]*Ledger)}
}

func (m *memStore) Create(_ context.Context, l *Ledger) (*Ledger, error) {
	cp := *l
	cp.ID = m.nextID
	m.nextID++
	m.ledgers[cp.ID] = &cp
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Ledger, error) {
	l, ok := m.ledgers[id]
	if !ok {
		return nil, nil
	}
	return l, nil
}

func (m *memStore) ListByGroupID(_ context.Context, groupID int64) ([]*Ledger, error) {
	var out []*Ledger
	for _, l := range m.ledgers {
		if l.GroupID != nil && *l.GroupID == groupID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) ListInvolvingUser(_ context.Context, userID int64) ([]*Ledger, error) {
	var out []*Ledger
	for _, l := range m.ledgers {
		for _, id := range l.InvolvedUserIDs {
			if id == userID {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) UpdateShares(_ context.Context, id int64, method split.Method, notes *string, participants []*Participant) (*Ledger, error) {
	l, ok := m.ledgers[id]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	l.SplitMethod = method
	if notes != nil {
		l.Notes = *notes
	}
	l.Participants = participants
	l.RecomputeInvolvedUserIDs()
	return l, nil
}

func (m *memStore) SetParticipantSettled(_ context.Context, ledgerID, userID int64, settled bool) (*Ledger, error) {
	l, ok := m.ledgers[ledgerID]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	p := l.Participant(userID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	p.IsSettled = settled
	return l, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.ledgers[id]; !ok {
		return ErrLedgerNotFound
	}
	delete(m.ledgers, id)
	return nil
}

// fakeRecorder captures activity events, optionally failing every write.
type fakeRecorder struct {
	events []activity.Event
	fail   bool
}

func (f *fakeRecorder) Record(_ context.Context, e activity.Event) error {
	if f.fail {
		return errors.New("audit log unavailable")
	}
	f.events = append(f.events, e)
	return nil
}

type staticProfiles map[int64]string

func (p staticProfiles) DisplayName(_ context.Context, userID int64) (string, error) {
	return p[userID], nil
}

func newTestService() (*Service, *memStore, *fakeRecorder) {
	store := newMemStore()
	recorder := &fakeRecorder{}
	profiles := staticProfiles{1: "Alice", 2: "Bob", 3: "Carol"}
	return NewService(store, split.NewFactory(), recorder, profiles), store, recorder
}

func equalSplitRequest() *CreateLedgerRequest {
	return &CreateLedgerRequest{
		ExpenseID:   10,
		Description: "Dinner",
		TotalAmount: 100,
		Currency:    "USD",
		SplitMethod: "EQUALLY",
		PaidBy:      1,
		Participants: []*ShareInput{
			{UserID: 1}, {UserID: 2}, {UserID: 3},
		},
	}
}

func TestCreateMarksPayerSettled(t *testing.T) {
	svc, _, _ := newTestService()

	l, err := svc.Create(context.Background(), 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	payer := l.Participant(1)
	if payer == nil || !payer.IsSettled {
		t.Error("payer's own share should be settled at creation")
	}
	for _, id := range []int64{2, 3} {
		if p := l.Participant(id); p == nil || p.IsSettled {
			t.Errorf("participant %d should start unsettled", id)
		}
	}
}

func TestCreateComputesInvolvedUserIDs(t *testing.T) {
	svc, _, _ := newTestService()

	l, err := svc.Create(context.Background(), 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := []int64{1, 2, 3}
	if len(l.InvolvedUserIDs) != len(want) {
		t.Fatalf("involved user IDs = %v, want %v", l.InvolvedUserIDs, want)
	}
	for i, id := range want {
		if l.InvolvedUserIDs[i] != id {
			t.Fatalf("involved user IDs = %v, want %v", l.InvolvedUserIDs, want)
		}
	}
}

func TestCreateRejectsAbsentPayer(t *testing.T) {
	svc, _, _ := newTestService()

	req := equalSplitRequest()
	req.PaidBy = 99
	if _, err := svc.Create(context.Background(), 1, req); !errors.Is(err, ErrPayerNotParticipant) {
		t.Fatalf("error = %v, want %v", err, ErrPayerNotParticipant)
	}
}

func TestCreateRejectsInvalidCurrency(t *testing.T) {
	svc, _, _ := newTestService()

	req := equalSplitRequest()
	req.Currency = "usd"
	if _, err := svc.Create(context.Background(), 1, req); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidCurrency)
	}
}

func TestCreateRejectsBadAllocation(t *testing.T) {
	svc, store, _ := newTestService()

	amount := func(v float64) *float64 { return &v }
	req := equalSplitRequest()
	req.SplitMethod = "BY_AMOUNT"
	req.Participants = []*ShareInput{
		{UserID: 1, Amount: amount(50)},
		{UserID: 2, Amount: amount(30)},
		{UserID: 3, Amount: amount(15)},
	}

	if _, err := svc.Create(context.Background(), 1, req); !errors.Is(err, split.ErrAmountSumMismatch) {
		t.Fatalf("error = %v, want %v", err, split.ErrAmountSumMismatch)
	}
	if len(store.ledgers) != 0 {
		t.Error("failed allocation must not persist a ledger")
	}
}

func TestCreateInGroupEmitsActivityEvent(t *testing.T) {
	svc, _, recorder := newTestService()

	groupID := int64(5)
	groupName := "Trip"
	req := equalSplitRequest()
	req.GroupID = &groupID
	req.GroupName = &groupName

	if _, err := svc.Create(context.Background(), 1, req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("got %d events, want 1", len(recorder.events))
	}
	e := recorder.events[0]
	if e.Action != activity.ActionExpenseSplitInGroup {
		t.Errorf("action = %v, want %v", e.Action, activity.ActionExpenseSplitInGroup)
	}
	if e.ActorName != "Alice" {
		t.Errorf("actor name = %q, want Alice", e.ActorName)
	}
	if e.RelatedExpenseID == nil || *e.RelatedExpenseID != 10 {
		t.Error("event should reference the split expense")
	}
}

func TestCreateWithoutGroupEmitsNoEvent(t *testing.T) {
	svc, _, recorder := newTestService()

	if _, err := svc.Create(context.Background(), 1, equalSplitRequest()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(recorder.events) != 0 {
		t.Errorf("ungrouped split emitted %d events, want 0", len(recorder.events))
	}
}

func TestRecorderFailureDoesNotFailMutation(t *testing.T) {
	svc, store, recorder := newTestService()
	recorder.fail = true

	groupID := int64(5)
	req := equalSplitRequest()
	req.GroupID = &groupID

	l, err := svc.Create(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Create should survive a recorder failure, got: %v", err)
	}
	if _, ok := store.ledgers[l.ID]; !ok {
		t.Error("ledger should be persisted despite recorder failure")
	}
}

func TestUpdateSharesReallocatesAgainstOriginalTotal(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	pct := func(v float64) *float64 { return &v }
	method := "BY_PERCENTAGE"
	updated, err := svc.UpdateShares(ctx, 1, l.ID, &UpdateSharesRequest{
		SplitMethod: &method,
		Shares: []*ShareInput{
			{UserID: 1, Percentage: pct(50)},
			{UserID: 2, Percentage: pct(30)},
			{UserID: 3, Percentage: pct(20)},
		},
	})
	if err != nil {
		t.Fatalf("UpdateShares returned error: %v", err)
	}

	if updated.SplitMethod != split.MethodByPercentage {
		t.Errorf("split method = %v, want BY_PERCENTAGE", updated.SplitMethod)
	}
	if got := updated.Participant(2).AmountOwed; got != 30 {
		t.Errorf("user 2 owes %v, want 30", got)
	}
	// Settled flags carry over: the payer stays settled.
	if !updated.Participant(1).IsSettled {
		t.Error("payer should remain settled after reallocation")
	}
	if updated.Participant(3).IsSettled {
		t.Error("unsettled share should remain unsettled after reallocation")
	}

	if len(recorder.events) != 1 {
		t.Fatalf("got %d events, want 1", len(recorder.events))
	}
	e := recorder.events[0]
	if e.Action != activity.ActionSplitSharesUpdated {
		t.Errorf("action = %v, want %v", e.Action, activity.ActionSplitSharesUpdated)
	}
	if e.PreviousValue == nil || *e.PreviousValue != "EQUALLY" {
		t.Error("event should record the previous split method")
	}
	if e.NewValue == nil || *e.NewValue != "BY_PERCENTAGE" {
		t.Error("event should record the new split method")
	}
}

func TestUpdateSharesRejectsParticipantSetChange(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	amount := func(v float64) *float64 { return &v }
	method := "BY_AMOUNT"

	tests := []struct {
		name   string
		shares []*ShareInput
	}{
		{
			name: "extra participant",
			shares: []*ShareInput{
				{UserID: 1, Amount: amount(25)},
				{UserID: 2, Amount: amount(25)},
				{UserID: 3, Amount: amount(25)},
				{UserID: 4, Amount: amount(25)},
			},
		},
		{
			name: "missing participant",
			shares: []*ShareInput{
				{UserID: 1, Amount: amount(50)},
				{UserID: 2, Amount: amount(50)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateShares(ctx, 1, l.ID, &UpdateSharesRequest{
				SplitMethod: &method,
				Shares:      tt.shares,
			})
			if !errors.Is(err, ErrParticipantSetFixed) {
				t.Fatalf("error = %v, want %v", err, ErrParticipantSetFixed)
			}
		})
	}
}

func TestUpdateSharesInvalidAllocationLeavesLedgerUntouched(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	amount := func(v float64) *float64 { return &v }
	method := "BY_AMOUNT"
	_, err = svc.UpdateShares(ctx, 1, l.ID, &UpdateSharesRequest{
		SplitMethod: &method,
		Shares: []*ShareInput{
			{UserID: 1, Amount: amount(10)},
			{UserID: 2, Amount: amount(10)},
			{UserID: 3, Amount: amount(10)},
		},
	})
	if !errors.Is(err, split.ErrAmountSumMismatch) {
		t.Fatalf("error = %v, want %v", err, split.ErrAmountSumMismatch)
	}

	stored := store.ledgers[l.ID]
	if stored.SplitMethod != split.MethodEqually {
		t.Error("rejected update must leave the split method unchanged")
	}
	if got := stored.Participant(3).AmountOwed; got != 33.34 {
		t.Errorf("rejected update must leave shares unchanged, user 3 owes %v", got)
	}
}

func TestSetParticipantSettlement(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.SetParticipantSettlement(ctx, 1, l.ID, 2, true)
	if err != nil {
		t.Fatalf("SetParticipantSettlement returned error: %v", err)
	}
	if !updated.Participant(2).IsSettled {
		t.Error("participant 2 should be settled")
	}

	if len(recorder.events) != 1 {
		t.Fatalf("got %d events, want 1", len(recorder.events))
	}
	e := recorder.events[0]
	if e.Action != activity.ActionSettlementUpdated {
		t.Errorf("action = %v, want %v", e.Action, activity.ActionSettlementUpdated)
	}
	if e.RelatedMemberID == nil || *e.RelatedMemberID != 2 {
		t.Error("event should reference the settled member")
	}
	if e.PreviousValue == nil || *e.PreviousValue != "unsettled" || e.NewValue == nil || *e.NewValue != "settled" {
		t.Error("event should record the settlement transition")
	}
}

func TestSetParticipantSettlementReversal(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.SetParticipantSettlement(ctx, 1, l.ID, 2, true); err != nil {
		t.Fatalf("settle returned error: %v", err)
	}
	updated, err := svc.SetParticipantSettlement(ctx, 1, l.ID, 2, false)
	if err != nil {
		t.Fatalf("reversal returned error: %v", err)
	}
	if updated.Participant(2).IsSettled {
		t.Error("participant 2 should be unsettled after reversal")
	}

	if len(recorder.events) != 2 {
		t.Fatalf("got %d events, want 2", len(recorder.events))
	}
	e := recorder.events[1]
	if e.NewValue == nil || *e.NewValue != "unsettled" {
		t.Error("reversal event should record the unsettled state")
	}
}

func TestSetParticipantSettlementNoOp(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Settling an already-settled share (the payer's) changes nothing.
	if _, err := svc.SetParticipantSettlement(ctx, 1, l.ID, 1, true); err != nil {
		t.Fatalf("no-op settlement returned error: %v", err)
	}
	if len(recorder.events) != 0 {
		t.Errorf("no-op settlement emitted %d events, want 0", len(recorder.events))
	}
}

func TestSetParticipantSettlementUnknownParticipant(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.SetParticipantSettlement(ctx, 1, l.ID, 42, true); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrParticipantNotFound)
	}
}

func TestDeleteEmitsEventAndRemovesLedger(t *testing.T) {
	svc, store, recorder := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, equalSplitRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(ctx, 1, l.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.ledgers) != 0 {
		t.Error("ledger should be gone after delete")
	}
	if len(recorder.events) != 1 || recorder.events[0].Action != activity.ActionSplitDeleted {
		t.Error("delete should emit a SPLIT_DELETED event")
	}

	if _, err := svc.GetByID(ctx, l.ID); !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrLedgerNotFound)
	}
}
