package usecase

import (
	"context"
	"fmt"
	"strings"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// CommandPrefix marks admin command messages
const CommandPrefix = "!"

// Dice is the seedable random source for the sampling gate.
// *rand.Rand from math/rand/v2 satisfies it.
type Dice interface {
	IntN(n int) int
}

// AdmissionUsecase classifies incoming messages: admin command, candidate
// admitted for a reply, or suppressed
type AdmissionUsecase struct {
	configRepo repo.ConfigRepo
	dice       Dice
}

// NewAdmissionUsecase creates a new admission usecase
func NewAdmissionUsecase(configRepo repo.ConfigRepo, dice Dice) *AdmissionUsecase {
	return &AdmissionUsecase{
		configRepo: configRepo,
		dice:       dice,
	}
}

// Decide classifies one incoming message. The first message observed in a
// conversation creates its config with the sender as first admin.
func (uc *AdmissionUsecase) Decide(ctx context.Context, conversationID, userID int64, text string) (*domain.Decision, error) {
	cfg, err := uc.configRepo.GetOrCreate(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create config: %w", err)
	}

	if strings.HasPrefix(text, CommandPrefix) {
		command, args := splitCommand(text)
		return &domain.Decision{
			Outcome: domain.OutcomeCommand,
			Command: command,
			Args:    args,
			Config:  cfg,
		}, nil
	}

	tracked, err := uc.configRepo.ListTrackedUsers(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list tracked users: %w", err)
	}

	if !containsUser(tracked, userID) {
		return &domain.Decision{Outcome: domain.OutcomeSuppressed, Config: cfg}, nil
	}

	// Percentage 100 admits without consulting the dice, so that setting is
	// fully deterministic
	if cfg.ResponsePercentage < 100 {
		roll := uc.dice.IntN(100) + 1
		if roll > cfg.ResponsePercentage {
			return &domain.Decision{Outcome: domain.OutcomeSuppressed, Config: cfg}, nil
		}
	}

	return &domain.Decision{Outcome: domain.OutcomeAdmitted, Config: cfg}, nil
}

// splitCommand splits "!cmd rest of args" into a lowercased command token and
// its raw args
func splitCommand(text string) (command, args string) {
	body := strings.TrimSpace(strings.TrimPrefix(text, CommandPrefix))
	if i := strings.IndexAny(body, " \t\n"); i >= 0 {
		return strings.ToLower(body[:i]), strings.TrimSpace(body[i+1:])
	}
	return strings.ToLower(body), ""
}

func containsUser(users []int64, userID int64) bool {
	for _, u := range users {
		if u == userID {
			return true
		}
	}
	return false
}
