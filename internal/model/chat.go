package model

import "time"

type ChatMessage struct {
	ID          int64      `json:"id"`
	FamilyID    int64      `json:"family_id"`
	UserID      int64      `json:"user_id"`
	Content     string     `json:"content"`
	Type        string     `json:"type"`
	Attachments StringList `json:"attachments"`
	CreatedAt   time.Time  `json:"created_at"`

	User *User `json:"user,omitempty"`
}
