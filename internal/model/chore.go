package model

import "time"

type Chore struct {
	ID          int64      `json:"id"`
	FamilyID    int64      `json:"family_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Schedule    Schedule   `json:"schedule"`
	Difficulty  string     `json:"difficulty"`
	Photos      StringList `json:"photos"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Populated on detail/list reads
	Assignments []ChoreAssignment `json:"assignments,omitempty"`
}

type ChoreAssignment struct {
	ID        int64     `json:"id"`
	ChoreID   int64     `json:"chore_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User        *User             `json:"user,omitempty"`
	Completions []ChoreCompletion `json:"completions,omitempty"`
}

type ChoreCompletion struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	UserID       int64      `json:"user_id"`
	Status       string     `json:"status"`
	BeforePhotos StringList `json:"before_photos"`
	AfterPhotos  StringList `json:"after_photos"`
	Notes        string     `json:"notes"`
	TimeSpent    *int       `json:"time_spent"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
