package user

import "time"

// User represents a user profile. DisplayName is what other surfaces
// (activity events, settlement messages) show; DefaultCurrency seeds new
// expenses in the UI.
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	DefaultCurrency string    `json:"default_currency"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
