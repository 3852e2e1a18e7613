package domain

import "time"

// UserConfig is the stored, still-encoded preference blob of one user.
type UserConfig struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Config    []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
