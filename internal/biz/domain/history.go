package domain

import "time"

// HistoryEntry is one stored conversation message
type HistoryEntry struct {
	ID             int64
	ConversationID int64
	AuthorID       int64
	Text           string
	IsBot          bool
	CreatedAt      time.Time
}

// ChatTurn is one turn of a model prompt
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}
