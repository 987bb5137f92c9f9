package store

import (
	"fmt"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// CacheMessages stores fetched messages. INSERT OR IGNORE keeps the first
// copy of any (conversation, sequence) pair, so re-caching an archive page
// or an overlapping recent window is harmless.
func (s *Store) CacheMessages(conversationID string, msgs []chat.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO messages (conversation_id, seq, role, content, tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.Exec(conversationID, m.Sequence, string(m.Role), m.Content, m.Tokens, m.Timestamp.UTC()); err != nil {
			return fmt.Errorf("cache message %d: %w", m.Sequence, err)
		}
	}

	return tx.Commit()
}

// RecentMessages retrieves the most recent N messages for a conversation
// in chronological order.
func (s *Store) RecentMessages(conversationID string, limit int) ([]chat.Message, error) {
	rows, err := s.db.Query(`
		SELECT seq, role, content, tokens, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

// MessagesBefore retrieves one backward archive page: up to limit messages
// with sequence strictly below beforeSequence, ascending, plus whether
// older messages remain beyond the page.
func (s *Store) MessagesBefore(conversationID string, beforeSequence int64, limit int) (chat.ArchivePage, error) {
	rows, err := s.db.Query(`
		SELECT seq, role, content, tokens, created_at
		FROM messages
		WHERE conversation_id = ? AND seq < ?
		ORDER BY seq DESC
		LIMIT ?
	`, conversationID, beforeSequence, limit)
	if err != nil {
		return chat.ArchivePage{}, fmt.Errorf("query archive page: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return chat.ArchivePage{}, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	page := chat.ArchivePage{Messages: msgs}
	if len(msgs) > 0 {
		var remaining int
		err = s.db.QueryRow(`
			SELECT COUNT(*) FROM messages
			WHERE conversation_id = ? AND seq < ?
		`, conversationID, msgs[0].Sequence).Scan(&remaining)
		if err != nil {
			return chat.ArchivePage{}, fmt.Errorf("count older messages: %w", err)
		}
		page.HasMore = remaining > 0
	}

	return page, nil
}

// NextSequence returns the next unused sequence for a conversation.
// Offline mode assigns sequences locally; the first message gets 1.
func (s *Store) NextSequence(conversationID string) (int64, error) {
	var max int64
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = ?
	`, conversationID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return max + 1, nil
}

// CountMessages returns the number of cached messages for a conversation.
func (s *Store) CountMessages(conversationID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanMessages(rows rowScanner) ([]chat.Message, error) {
	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		var role string
		if err := rows.Scan(&m.Sequence, &role, &m.Content, &m.Tokens, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = chat.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
