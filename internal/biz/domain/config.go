package domain

import "time"

// ResponseLength controls how verbose generated replies are
type ResponseLength string

const (
	ResponseShort  ResponseLength = "short"
	ResponseMedium ResponseLength = "medium"
	ResponseLong   ResponseLength = "long"
)

// ParseResponseLength parses a user-supplied length value
func ParseResponseLength(s string) (ResponseLength, bool) {
	switch ResponseLength(s) {
	case ResponseShort, ResponseMedium, ResponseLong:
		return ResponseLength(s), true
	}
	return "", false
}

// BotAuthorID is the reserved author id for bot-authored history entries.
// Telegram user ids are positive, so it never collides with a real sender.
const BotAuthorID int64 = -1

// Defaults applied when a conversation is first observed
const (
	DefaultResponsePercentage = 100
	DefaultMemorySize         = 10
)

// ConversationConfig is the per-conversation bot configuration
type ConversationConfig struct {
	ConversationID     int64
	PersonaRole        string
	PersonaTask        string
	ResponseLength     ResponseLength
	ResponsePercentage int
	MemorySize         int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ConfigUpdate is a sparse update; nil fields are left untouched
type ConfigUpdate struct {
	PersonaRole        *string
	PersonaTask        *string
	ResponseLength     *ResponseLength
	ResponsePercentage *int
	MemorySize         *int
}

// IsEmpty reports whether the update would change nothing
func (u *ConfigUpdate) IsEmpty() bool {
	return u.PersonaRole == nil && u.PersonaTask == nil && u.ResponseLength == nil &&
		u.ResponsePercentage == nil && u.MemorySize == nil
}
