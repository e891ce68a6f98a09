package usecase

import (
	"context"
	"fmt"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// ConversationUsecase orchestrates the handling of one incoming message
type ConversationUsecase struct {
	admissionUC *AdmissionUsecase
	commandUC   *CommandUsecase
	composerUC  *ComposerUsecase
	historyRepo repo.HistoryRepo
}

// NewConversationUsecase creates a new conversation usecase
func NewConversationUsecase(
	admissionUC *AdmissionUsecase,
	commandUC *CommandUsecase,
	composerUC *ComposerUsecase,
	historyRepo repo.HistoryRepo,
) *ConversationUsecase {
	return &ConversationUsecase{
		admissionUC: admissionUC,
		commandUC:   commandUC,
		composerUC:  composerUC,
		historyRepo: historyRepo,
	}
}

// MessageRequest represents one inbound chat message
type MessageRequest struct {
	ConversationID int64
	UserID         int64
	Text           string
}

// HandleMessage processes one message end to end and returns the reply text.
// An empty reply means the bot stays silent.
func (uc *ConversationUsecase) HandleMessage(ctx context.Context, req *MessageRequest) (string, error) {
	decision, err := uc.admissionUC.Decide(ctx, req.ConversationID, req.UserID, req.Text)
	if err != nil {
		return "", fmt.Errorf("decide admission: %w", err)
	}

	switch decision.Outcome {
	case domain.OutcomeCommand:
		// Commands are operational traffic and never reach history
		return uc.commandUC.Handle(ctx, req.ConversationID, req.UserID, decision.Command, decision.Args), nil

	case domain.OutcomeSuppressed:
		// Logged anyway so future admitted turns keep the full context
		if err := uc.historyRepo.Append(ctx, req.ConversationID, req.UserID, req.Text, false); err != nil {
			return "", fmt.Errorf("append suppressed message: %w", err)
		}
		return "", nil
	}

	cfg := decision.Config

	history, err := uc.historyRepo.Recent(ctx, req.ConversationID, cfg.MemorySize)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	reply := uc.composerUC.Compose(ctx, cfg, history, req.Text)

	if err := uc.historyRepo.Append(ctx, req.ConversationID, req.UserID, req.Text, false); err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}
	if err := uc.historyRepo.Append(ctx, req.ConversationID, domain.BotAuthorID, reply, true); err != nil {
		return "", fmt.Errorf("append bot message: %w", err)
	}

	// Retention keeps twice the prompt window, so context survives trimming
	if err := uc.historyRepo.Trim(ctx, req.ConversationID, cfg.MemorySize*2); err != nil {
		return "", fmt.Errorf("trim history: %w", err)
	}

	return reply, nil
}
