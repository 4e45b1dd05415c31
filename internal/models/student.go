package models

import "time"

// StudentAccount is a registered student identity with a reward-point
// balance. The credential is a bcrypt hash and never leaves the server.
type StudentAccount struct {
	ID           string    `json:"id"`
	Roll         string    `json:"roll"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Rewards      int64     `json:"rewards"`
	JoinedAt     time.Time `json:"joinedAt"`
}
