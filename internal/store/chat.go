package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

func scanChatMessage(scanner interface{ Scan(...any) error }) (*model.ChatMessage, error) {
	var m model.ChatMessage
	err := scanner.Scan(
		&m.ID, &m.FamilyID, &m.UserID, &m.Content, &m.Type, &m.Attachments, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const chatCols = `id, family_id, user_id, content, type, attachments, created_at`

// Create persists the message and returns it with the sender attached.
func (s *ChatStore) Create(familyID, userID int64, content, msgType string, attachments model.StringList) (*model.ChatMessage, error) {
	result, err := s.db.Exec(
		`INSERT INTO chat_messages (family_id, user_id, content, type, attachments) VALUES (?, ?, ?, ?, ?)`,
		familyID, userID, content, msgType, attachments,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	m, err := scanChatMessage(s.db.QueryRow(`SELECT `+chatCols+` FROM chat_messages WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}

	u, err := scanUser(s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, userID))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	m.User = u
	return m, nil
}

// ListRecent returns the family's latest messages in chronological order.
func (s *ChatStore) ListRecent(familyID int64, limit int) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT `+chatCols+` FROM chat_messages WHERE family_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		familyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query fetches newest-first to apply the limit; callers want oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if len(messages) == 0 {
		return messages, nil
	}

	userRows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE family_id = ?`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list senders: %w", err)
	}
	defer userRows.Close()

	users := make(map[int64]*model.User)
	for userRows.Next() {
		u, err := scanUser(userRows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	for i := range messages {
		messages[i].User = users[messages[i].UserID]
	}
	return messages, nil
}
