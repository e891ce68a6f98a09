package data

import (
	"context"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
	"personabot/llm"
)

// modelRepo adapts the llm client to the ModelRepo interface
type modelRepo struct {
	client *llm.Client
}

// NewModelRepo creates a model repository backed by the OpenAI client
func NewModelRepo(client *llm.Client) repo.ModelRepo {
	return &modelRepo{client: client}
}

// Complete sends the prompt to the chat model
func (r *modelRepo) Complete(ctx context.Context, systemPrompt string, turns []domain.ChatTurn, maxTokens int) (string, error) {
	llmTurns := make([]llm.Turn, 0, len(turns))
	for _, t := range turns {
		llmTurns = append(llmTurns, llm.Turn{Role: t.Role, Content: t.Content})
	}
	return r.client.Chat(ctx, systemPrompt, llmTurns, maxTokens)
}
