package repo

import (
	"context"

	"personabot/internal/biz/domain"
)

// ModelRepo is the language-model collaborator interface
type ModelRepo interface {
	// Complete sends a system instruction plus ordered turns and returns the
	// model reply text
	Complete(ctx context.Context, systemPrompt string, turns []domain.ChatTurn, maxTokens int) (string, error)
}
