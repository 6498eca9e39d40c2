package model

import "time"

type Reward struct {
	ID          int64      `json:"id"`
	FamilyID    int64      `json:"family_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PointCost   int        `json:"point_cost"`
	Photos      StringList `json:"photos"`
	// Stock is nil when the reward is unlimited.
	Stock     *int      `json:"stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RewardRedemption struct {
	ID        int64     `json:"id"`
	RewardID  int64     `json:"reward_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
