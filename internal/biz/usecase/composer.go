package usecase

import (
	"context"
	"fmt"
	"strings"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// ComposerUsecase builds model prompts from configuration and history and
// turns model replies into displayable text
type ComposerUsecase struct {
	modelRepo repo.ModelRepo
}

// NewComposerUsecase creates a new composer usecase
func NewComposerUsecase(modelRepo repo.ModelRepo) *ComposerUsecase {
	return &ComposerUsecase{modelRepo: modelRepo}
}

const (
	roleClause        = "You are not an AI. You are the living embodiment of this role: %s"
	taskClause        = "You are not an AI. Immerse yourself fully in your task. Your task: %s"
	fallbackClause    = "You are a friendly conversation partner."
	naturalnessClause = "Behave naturally, like a real person in a conversation. Never mention that you are an AI."
)

var lengthInstructions = map[domain.ResponseLength]string{
	domain.ResponseShort:  "Reply very briefly, one or two sentences at most.",
	domain.ResponseMedium: "Reply with medium-sized messages, two to four sentences.",
	domain.ResponseLong:   "Reply at length, several sentences are fine.",
}

var maxTokensByLength = map[domain.ResponseLength]int{
	domain.ResponseShort:  100,
	domain.ResponseMedium: 200,
	domain.ResponseLong:   500,
}

// Compose generates a reply for the incoming message. A model failure is
// returned as displayable text, so the caller always has something to send.
func (uc *ComposerUsecase) Compose(ctx context.Context, cfg *domain.ConversationConfig, history []domain.HistoryEntry, incoming string) string {
	systemPrompt := uc.systemPrompt(cfg)
	turns := uc.buildTurns(history, incoming)

	maxTokens, ok := maxTokensByLength[cfg.ResponseLength]
	if !ok {
		maxTokens = maxTokensByLength[domain.ResponseMedium]
	}

	reply, err := uc.modelRepo.Complete(ctx, systemPrompt, turns, maxTokens)
	if err != nil {
		return fmt.Sprintf("Failed to generate a reply: %v", err)
	}
	return strings.TrimSpace(reply)
}

// systemPrompt assembles the system instruction in fixed order: role clause,
// task clause, length instruction, naturalness clause. Without any persona it
// falls back to a generic conversationalist instruction.
func (uc *ComposerUsecase) systemPrompt(cfg *domain.ConversationConfig) string {
	var parts []string
	if cfg.PersonaRole != "" {
		parts = append(parts, fmt.Sprintf(roleClause, cfg.PersonaRole))
	}
	if cfg.PersonaTask != "" {
		parts = append(parts, fmt.Sprintf(taskClause, cfg.PersonaTask))
	}
	if len(parts) == 0 {
		parts = append(parts, fallbackClause)
	}

	instruction, ok := lengthInstructions[cfg.ResponseLength]
	if !ok {
		instruction = lengthInstructions[domain.ResponseMedium]
	}
	parts = append(parts, instruction, naturalnessClause)

	return strings.Join(parts, " ")
}

// buildTurns maps stored history onto model turns and appends the incoming
// message as the final user turn
func (uc *ComposerUsecase) buildTurns(history []domain.HistoryEntry, incoming string) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(history)+1)
	for _, e := range history {
		role := "user"
		if e.IsBot {
			role = "assistant"
		}
		turns = append(turns, domain.ChatTurn{Role: role, Content: e.Text})
	}
	return append(turns, domain.ChatTurn{Role: "user", Content: incoming})
}
