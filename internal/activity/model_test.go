package activity

import "testing"

func TestNewEvent(t *testing.T) {
	e := NewEvent(1, "Alice", ActionSettlementUpdated, "Alice settled Bob's share",
		WithExpense(7),
		WithMember(2),
		WithChange("unsettled", "settled"))

	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("event should get a fresh ID")
	}
	if e.CreatedAt.IsZero() {
		t.Error("event should be timestamped")
	}
	if e.ActorID != 1 || e.ActorName != "Alice" {
		t.Errorf("actor = %d %q, want 1 Alice", e.ActorID, e.ActorName)
	}
	if e.RelatedExpenseID == nil || *e.RelatedExpenseID != 7 {
		t.Error("WithExpense should set the related expense")
	}
	if e.RelatedMemberID == nil || *e.RelatedMemberID != 2 {
		t.Error("WithMember should set the related member")
	}
	if e.PreviousValue == nil || *e.PreviousValue != "unsettled" {
		t.Error("WithChange should set the previous value")
	}
	if e.NewValue == nil || *e.NewValue != "settled" {
		t.Error("WithChange should set the new value")
	}
}

func TestNewEventWithoutOptions(t *testing.T) {
	e := NewEvent(3, "Carol", ActionSplitDeleted, "Carol deleted a split")

	if e.RelatedExpenseID != nil || e.RelatedMemberID != nil {
		t.Error("bare event should carry no related IDs")
	}
	if e.PreviousValue != nil || e.NewValue != nil {
		t.Error("bare event should carry no change values")
	}
}
