package store

import (
	"fmt"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// SaveConversation inserts or updates a conversation row.
func (s *Store) SaveConversation(c chat.Conversation) error {
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, title, technique, has_archived, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			technique = excluded.technique,
			has_archived = excluded.has_archived,
			updated_at = excluded.updated_at
	`, c.ID, c.Title, c.Technique, boolToInt(c.HasArchived), c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// ListConversations returns all cached conversations, most recently
// active first.
func (s *Store) ListConversations() ([]chat.Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, title, technique, has_archived, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []chat.Conversation
	for rows.Next() {
		var c chat.Conversation
		var hasArchived int
		if err := rows.Scan(&c.ID, &c.Title, &c.Technique, &hasArchived, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.HasArchived = hasArchived != 0
		out = append(out, c)
	}

	return out, rows.Err()
}

// GetConversation returns one conversation by id.
func (s *Store) GetConversation(id string) (chat.Conversation, error) {
	var c chat.Conversation
	var hasArchived int
	err := s.db.QueryRow(`
		SELECT id, title, technique, has_archived, updated_at
		FROM conversations
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Title, &c.Technique, &hasArchived, &c.UpdatedAt)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	c.HasArchived = hasArchived != 0
	return c, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(id string) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
