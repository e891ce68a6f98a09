package repo

import (
	"context"

	"personabot/internal/biz/domain"
)

// HistoryRepo is the conversation history repository interface.
// Sole owner of the history table; entries are append-only and bounded by Trim.
type HistoryRepo interface {
	// Append stores one message, timestamped at call time
	Append(ctx context.Context, conversationID, authorID int64, text string, isBot bool) error

	// Recent returns at most limit entries, the newest ones, in chronological
	// order (oldest first)
	Recent(ctx context.Context, conversationID int64, limit int) ([]domain.HistoryEntry, error)

	// Trim deletes all but the keepLast most recent entries of one
	// conversation; other conversations are untouched
	Trim(ctx context.Context, conversationID int64, keepLast int) error

	// Count returns the number of stored entries for a conversation
	Count(ctx context.Context, conversationID int64) (int, error)
}
