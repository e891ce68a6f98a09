package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// historyRepo implements the conversation history repository
type historyRepo struct {
	db *sql.DB
}

func newHistoryRepo(db *sql.DB) repo.HistoryRepo {
	return &historyRepo{db: db}
}

// Append stores one message, timestamped at call time
func (r *historyRepo) Append(ctx context.Context, conversationID, authorID int64, text string, isBot bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (conversation_id, user_id, message, is_bot, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, conversationID, authorID, text, isBot, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// Recent returns the newest entries in chronological order (oldest first).
// Ties on created_at are broken by insert order so same-second appends
// stay deterministic.
func (r *historyRepo) Recent(ctx context.Context, conversationID int64, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, message, is_bot, created_at
		FROM history
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.AuthorID, &e.Text, &e.IsBot, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query, reversed into chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Trim deletes all but the keepLast most recent entries of one conversation
func (r *historyRepo) Trim(ctx context.Context, conversationID int64, keepLast int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM history
		WHERE conversation_id = ?
		AND id NOT IN (
			SELECT id FROM history
			WHERE conversation_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
	`, conversationID, conversationID, keepLast)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries for a conversation
func (r *historyRepo) Count(ctx context.Context, conversationID int64) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM history WHERE conversation_id = ?
	`, conversationID)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}
