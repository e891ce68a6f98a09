package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"personabot/internal/biz/domain"
)

type mockModelRepo struct {
	systemPrompt string
	turns        []domain.ChatTurn
	maxTokens    int
	reply        string
	err          error
}

func (m *mockModelRepo) Complete(ctx context.Context, systemPrompt string, turns []domain.ChatTurn, maxTokens int) (string, error) {
	m.systemPrompt = systemPrompt
	m.turns = turns
	m.maxTokens = maxTokens
	return m.reply, m.err
}

func mediumConfig() *domain.ConversationConfig {
	return &domain.ConversationConfig{
		ConversationID:     1,
		ResponseLength:     domain.ResponseMedium,
		ResponsePercentage: 100,
		MemorySize:         10,
	}
}

func TestCompose_SystemPromptOrder(t *testing.T) {
	model := &mockModelRepo{reply: "ok"}
	uc := NewComposerUsecase(model)

	cfg := mediumConfig()
	cfg.PersonaRole = "Truck driver"
	cfg.PersonaTask = "Pass the time"

	uc.Compose(context.Background(), cfg, nil, "hello")

	prompt := model.systemPrompt
	roleIdx := strings.Index(prompt, "Truck driver")
	taskIdx := strings.Index(prompt, "Pass the time")
	lengthIdx := strings.Index(prompt, "two to four sentences")
	naturalIdx := strings.Index(prompt, "Behave naturally")

	if roleIdx < 0 || taskIdx < 0 || lengthIdx < 0 || naturalIdx < 0 {
		t.Fatalf("Expected all clauses present, got '%s'", prompt)
	}
	if !(roleIdx < taskIdx && taskIdx < lengthIdx && lengthIdx < naturalIdx) {
		t.Errorf("Expected fixed clause order role < task < length < naturalness, got '%s'", prompt)
	}
	if strings.Contains(prompt, fallbackClause) {
		t.Error("Expected no fallback clause when persona is set")
	}
}

func TestCompose_FallbackWithoutPersona(t *testing.T) {
	model := &mockModelRepo{reply: "ok"}
	uc := NewComposerUsecase(model)

	uc.Compose(context.Background(), mediumConfig(), nil, "hello")

	if !strings.HasPrefix(model.systemPrompt, fallbackClause) {
		t.Errorf("Expected fallback clause first, got '%s'", model.systemPrompt)
	}
	if !strings.Contains(model.systemPrompt, "Behave naturally") {
		t.Errorf("Expected naturalness clause, got '%s'", model.systemPrompt)
	}
}

func TestCompose_MaxTokensByLength(t *testing.T) {
	tests := []struct {
		length domain.ResponseLength
		want   int
	}{
		{domain.ResponseShort, 100},
		{domain.ResponseMedium, 200},
		{domain.ResponseLong, 500},
		{domain.ResponseLength("weird"), 200},
	}

	for _, tt := range tests {
		model := &mockModelRepo{reply: "ok"}
		uc := NewComposerUsecase(model)
		cfg := mediumConfig()
		cfg.ResponseLength = tt.length

		uc.Compose(context.Background(), cfg, nil, "hello")
		if model.maxTokens != tt.want {
			t.Errorf("length %s: expected %d max tokens, got %d", tt.length, tt.want, model.maxTokens)
		}
	}
}

func TestCompose_TurnMapping(t *testing.T) {
	model := &mockModelRepo{reply: "ok"}
	uc := NewComposerUsecase(model)

	history := []domain.HistoryEntry{
		{AuthorID: 100, Text: "hi bot", IsBot: false},
		{AuthorID: domain.BotAuthorID, Text: "hi human", IsBot: true},
	}

	uc.Compose(context.Background(), mediumConfig(), history, "how are you?")

	if len(model.turns) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(model.turns))
	}
	if model.turns[0].Role != "user" || model.turns[0].Content != "hi bot" {
		t.Errorf("Unexpected first turn: %+v", model.turns[0])
	}
	if model.turns[1].Role != "assistant" || model.turns[1].Content != "hi human" {
		t.Errorf("Unexpected second turn: %+v", model.turns[1])
	}
	if model.turns[2].Role != "user" || model.turns[2].Content != "how are you?" {
		t.Errorf("Expected incoming message as final user turn: %+v", model.turns[2])
	}
}

func TestCompose_ModelFailureReturnsText(t *testing.T) {
	model := &mockModelRepo{err: errors.New("boom")}
	uc := NewComposerUsecase(model)

	reply := uc.Compose(context.Background(), mediumConfig(), nil, "hello")
	if reply != "Failed to generate a reply: boom" {
		t.Errorf("Expected failure text, got '%s'", reply)
	}
}

func TestCompose_TrimsReply(t *testing.T) {
	model := &mockModelRepo{reply: "  spaced out \n"}
	uc := NewComposerUsecase(model)

	reply := uc.Compose(context.Background(), mediumConfig(), nil, "hello")
	if reply != "spaced out" {
		t.Errorf("Expected trimmed reply, got '%s'", reply)
	}
}
