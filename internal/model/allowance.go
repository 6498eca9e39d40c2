package model

import "time"

// AllowanceTransaction is an append-only ledger row. Amount and the jar
// distribution breakdown are in cents; the breakdown always sums to Amount.
type AllowanceTransaction struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Type            string    `json:"type"`
	Amount          int64     `json:"amount"`
	JarDistribution Jars      `json:"jar_distribution"`
	Source          string    `json:"source"`
	Note            string    `json:"note"`
	CreatedAt       time.Time `json:"created_at"`

	User *User `json:"user,omitempty"`
}
