package repo

import (
	"context"

	"personabot/internal/biz/domain"
)

// ConfigRepo is the conversation configuration repository interface.
// Sole owner of the conversations, conversation_admins and tracked_users tables.
type ConfigRepo interface {
	// GetOrCreate returns the config for a conversation, creating it with
	// defaults and the requesting user as first admin when missing
	GetOrCreate(ctx context.Context, conversationID, requestingUserID int64) (*domain.ConversationConfig, error)

	// Get returns the config for a conversation, or nil when it has never
	// been observed
	Get(ctx context.Context, conversationID int64) (*domain.ConversationConfig, error)

	// Update applies a sparse update and bumps the updated_at marker
	Update(ctx context.Context, conversationID int64, upd domain.ConfigUpdate) error

	// AddAdmin adds an admin; adding an existing admin is a no-op
	AddAdmin(ctx context.Context, conversationID, userID int64) error

	// RemoveAdmin removes an admin; removing a non-member is a no-op
	RemoveAdmin(ctx context.Context, conversationID, userID int64) error

	// IsAdmin reports whether the user may run protected commands
	IsAdmin(ctx context.Context, conversationID, userID int64) (bool, error)

	// ListAdmins returns admin user ids in insertion order
	ListAdmins(ctx context.Context, conversationID int64) ([]int64, error)

	// AddTrackedUser adds a user to the tracked set; duplicates are ignored
	AddTrackedUser(ctx context.Context, conversationID, userID int64) error

	// RemoveTrackedUser removes a user from the tracked set
	RemoveTrackedUser(ctx context.Context, conversationID, userID int64) error

	// ListTrackedUsers returns tracked user ids in insertion order
	ListTrackedUsers(ctx context.Context, conversationID int64) ([]int64, error)
}
