package ledger

import "github.com/yzeid/tally/internal/ledger/split"

// ShareInput is one participant's entry when creating or updating a split.
// Amount is used by BY_AMOUNT, Percentage by BY_PERCENTAGE; EQUALLY needs
// neither.
type ShareInput struct {
	UserID     int64    `json:"user_id" validate:"required"`
	Percentage *float64 `json:"percentage,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
}

// ToSplitInput converts to the split package's input type.
func (s *ShareInput) ToSplitInput() split.Input {
	return split.Input{
		UserID:     s.UserID,
		Percentage: s.Percentage,
		Amount:     s.Amount,
	}
}

// CreateLedgerRequest represents the request to split an expense.
type CreateLedgerRequest struct {
	ExpenseID    int64         `json:"expense_id" validate:"required"`
	Description  string        `json:"description" validate:"required,min=1,max=255"`
	TotalAmount  float64       `json:"total_amount" validate:"required,gt=0"`
	Currency     string        `json:"currency" validate:"required,len=3"`
	SplitMethod  string        `json:"split_method" validate:"required,oneof=EQUALLY BY_AMOUNT BY_PERCENTAGE"`
	PaidBy       int64         `json:"paid_by" validate:"required"`
	Participants []*ShareInput `json:"participants" validate:"required,min=1"`
	GroupID      *int64        `json:"group_id,omitempty"`
	GroupName    *string       `json:"group_name,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// UpdateSharesRequest changes how an existing ledger is divided. The
// participant identity set is fixed at creation; only shares move. Omitted
// fields keep their current values; Shares may be omitted entirely when
// switching to EQUALLY.
type UpdateSharesRequest struct {
	SplitMethod *string       `json:"split_method,omitempty" validate:"omitempty,oneof=EQUALLY BY_AMOUNT BY_PERCENTAGE"`
	Shares      []*ShareInput `json:"shares,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
}

// SetSettlementRequest flips one participant's settled flag.
type SetSettlementRequest struct {
	Settled bool `json:"settled"`
}

// ParticipantResponse represents a participant in a ledger response.
type ParticipantResponse struct {
	UserID     int64    `json:"user_id"`
	AmountOwed float64  `json:"amount_owed"`
	Percentage *float64 `json:"percentage,omitempty"`
	IsSettled  bool     `json:"is_settled"`
}

// LedgerResponse represents the response for a ledger.
type LedgerResponse struct {
	ID              int64                  `json:"id"`
	ExpenseID       int64                  `json:"expense_id"`
	Description     string                 `json:"description"`
	TotalAmount     float64                `json:"total_amount"`
	Currency        string                 `json:"currency"`
	SplitMethod     string                 `json:"split_method"`
	PaidBy          int64                  `json:"paid_by"`
	GroupID         *int64                 `json:"group_id,omitempty"`
	GroupName       *string                `json:"group_name,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Participants    []*ParticipantResponse `json:"participants"`
	InvolvedUserIDs []int64                `json:"involved_user_ids"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

// ToResponse converts a Ledger model to a LedgerResponse DTO.
func (l *Ledger) ToResponse() *LedgerResponse {
	participants := make([]*ParticipantResponse, len(l.Participants))
	for i, p := range l.Participants {
		participants[i] = &ParticipantResponse{
			UserID:     p.UserID,
			AmountOwed: p.AmountOwed,
			Percentage: p.Percentage,
			IsSettled:  p.IsSettled,
		}
	}
	return &LedgerResponse{
		ID:              l.ID,
		ExpenseID:       l.ExpenseID,
		Description:     l.Description,
		TotalAmount:     l.TotalAmount,
		Currency:        l.Currency,
		SplitMethod:     string(l.SplitMethod),
		PaidBy:          l.PaidBy,
		GroupID:         l.GroupID,
		GroupName:       l.GroupName,
		Notes:           l.Notes,
		Participants:    participants,
		InvolvedUserIDs: l.InvolvedUserIDs,
		CreatedAt:       l.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       l.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
