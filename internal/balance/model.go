package balance

// NetBalance is a user's aggregate paid-minus-owed position in one
// currency. Positive means others owe the user; negative means the user
// owes others. It is a pure projection, recomputed on every read and
// never persisted.
type NetBalance struct {
	UserID   int64   `json:"user_id"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Transfer is one entry in a simplified settlement plan: From pays To the
// amount in the given currency. Transient, recomputed on demand.
type Transfer struct {
	FromUserID int64   `json:"from_user_id"`
	ToUserID   int64   `json:"to_user_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}
