package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// configRepo implements the conversation configuration repository
type configRepo struct {
	db *sql.DB
}

func newConfigRepo(db *sql.DB) repo.ConfigRepo {
	return &configRepo{db: db}
}

// GetOrCreate gets a conversation config, creating it lazily. The requesting
// user becomes the first admin of a freshly created conversation.
func (r *configRepo) GetOrCreate(ctx context.Context, conversationID, requestingUserID int64) (*domain.ConversationConfig, error) {
	cfg, err := r.get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conversations (conversation_id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, conversationID, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	if err := r.AddAdmin(ctx, conversationID, requestingUserID); err != nil {
		return nil, err
	}

	return r.get(ctx, conversationID)
}

// Get returns the config for a conversation, or nil when missing
func (r *configRepo) Get(ctx context.Context, conversationID int64) (*domain.ConversationConfig, error) {
	return r.get(ctx, conversationID)
}

func (r *configRepo) get(ctx context.Context, conversationID int64) (*domain.ConversationConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT conversation_id, persona_role, persona_task, response_length,
		       response_percentage, memory_size, created_at, updated_at
		FROM conversations
		WHERE conversation_id = ?
	`, conversationID)

	var cfg domain.ConversationConfig
	var length string
	var createdAt, updatedAt int64
	err := row.Scan(&cfg.ConversationID, &cfg.PersonaRole, &cfg.PersonaTask, &length,
		&cfg.ResponsePercentage, &cfg.MemorySize, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	cfg.ResponseLength = domain.ResponseLength(length)
	cfg.CreatedAt = time.Unix(createdAt, 0)
	cfg.UpdatedAt = time.Unix(updatedAt, 0)
	return &cfg, nil
}

// Update applies a sparse update and bumps updated_at
func (r *configRepo) Update(ctx context.Context, conversationID int64, upd domain.ConfigUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	var set []string
	var args []interface{}
	if upd.PersonaRole != nil {
		set = append(set, "persona_role = ?")
		args = append(args, *upd.PersonaRole)
	}
	if upd.PersonaTask != nil {
		set = append(set, "persona_task = ?")
		args = append(args, *upd.PersonaTask)
	}
	if upd.ResponseLength != nil {
		set = append(set, "response_length = ?")
		args = append(args, string(*upd.ResponseLength))
	}
	if upd.ResponsePercentage != nil {
		set = append(set, "response_percentage = ?")
		args = append(args, *upd.ResponsePercentage)
	}
	if upd.MemorySize != nil {
		set = append(set, "memory_size = ?")
		args = append(args, *upd.MemorySize)
	}

	set = append(set, "updated_at = ?")
	args = append(args, time.Now().Unix(), conversationID)

	query := "UPDATE conversations SET " + strings.Join(set, ", ") + " WHERE conversation_id = ?"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

// AddAdmin adds an admin; the primary key makes a duplicate add a no-op
func (r *configRepo) AddAdmin(ctx context.Context, conversationID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conversation_admins (conversation_id, user_id, added_at)
		VALUES (?, ?, ?)
	`, conversationID, userID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

// RemoveAdmin removes an admin; removing a non-member is a no-op
func (r *configRepo) RemoveAdmin(ctx context.Context, conversationID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM conversation_admins WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	return nil
}

// IsAdmin checks admin membership
func (r *configRepo) IsAdmin(ctx context.Context, conversationID, userID int64) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM conversation_admins WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID)

	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query admin: %w", err)
	}
	return true, nil
}

// ListAdmins lists admin user ids in insertion order
func (r *configRepo) ListAdmins(ctx context.Context, conversationID int64) ([]int64, error) {
	return r.listMembers(ctx, "conversation_admins", conversationID)
}

// AddTrackedUser adds a user to the tracked set; duplicates are ignored
func (r *configRepo) AddTrackedUser(ctx context.Context, conversationID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO tracked_users (conversation_id, user_id, added_at)
		VALUES (?, ?, ?)
	`, conversationID, userID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add tracked user: %w", err)
	}
	return nil
}

// RemoveTrackedUser removes a user from the tracked set
func (r *configRepo) RemoveTrackedUser(ctx context.Context, conversationID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM tracked_users WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove tracked user: %w", err)
	}
	return nil
}

// ListTrackedUsers lists tracked user ids in insertion order
func (r *configRepo) ListTrackedUsers(ctx context.Context, conversationID int64) ([]int64, error) {
	return r.listMembers(ctx, "tracked_users", conversationID)
}

func (r *configRepo) listMembers(ctx context.Context, table string, conversationID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM "+table+" WHERE conversation_id = ? ORDER BY rowid",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
