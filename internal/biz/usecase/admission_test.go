package usecase

import (
	"context"
	"math/rand/v2"
	"testing"

	"personabot/internal/biz/domain"
)

// Mock implementations shared by the usecase tests

type mockConfigRepo struct {
	configs map[int64]*domain.ConversationConfig
	admins  map[int64][]int64
	tracked map[int64][]int64
	updates int
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{
		configs: make(map[int64]*domain.ConversationConfig),
		admins:  make(map[int64][]int64),
		tracked: make(map[int64][]int64),
	}
}

func (m *mockConfigRepo) GetOrCreate(ctx context.Context, conversationID, requestingUserID int64) (*domain.ConversationConfig, error) {
	if cfg, ok := m.configs[conversationID]; ok {
		return cfg, nil
	}
	cfg := &domain.ConversationConfig{
		ConversationID:     conversationID,
		ResponseLength:     domain.ResponseMedium,
		ResponsePercentage: domain.DefaultResponsePercentage,
		MemorySize:         domain.DefaultMemorySize,
	}
	m.configs[conversationID] = cfg
	m.admins[conversationID] = append(m.admins[conversationID], requestingUserID)
	return cfg, nil
}

func (m *mockConfigRepo) Get(ctx context.Context, conversationID int64) (*domain.ConversationConfig, error) {
	return m.configs[conversationID], nil
}

func (m *mockConfigRepo) Update(ctx context.Context, conversationID int64, upd domain.ConfigUpdate) error {
	cfg := m.configs[conversationID]
	if upd.PersonaRole != nil {
		cfg.PersonaRole = *upd.PersonaRole
	}
	if upd.PersonaTask != nil {
		cfg.PersonaTask = *upd.PersonaTask
	}
	if upd.ResponseLength != nil {
		cfg.ResponseLength = *upd.ResponseLength
	}
	if upd.ResponsePercentage != nil {
		cfg.ResponsePercentage = *upd.ResponsePercentage
	}
	if upd.MemorySize != nil {
		cfg.MemorySize = *upd.MemorySize
	}
	m.updates++
	return nil
}

func (m *mockConfigRepo) AddAdmin(ctx context.Context, conversationID, userID int64) error {
	for _, u := range m.admins[conversationID] {
		if u == userID {
			return nil
		}
	}
	m.admins[conversationID] = append(m.admins[conversationID], userID)
	return nil
}

func (m *mockConfigRepo) RemoveAdmin(ctx context.Context, conversationID, userID int64) error {
	m.admins[conversationID] = removeUser(m.admins[conversationID], userID)
	return nil
}

func (m *mockConfigRepo) IsAdmin(ctx context.Context, conversationID, userID int64) (bool, error) {
	return containsUser(m.admins[conversationID], userID), nil
}

func (m *mockConfigRepo) ListAdmins(ctx context.Context, conversationID int64) ([]int64, error) {
	return m.admins[conversationID], nil
}

func (m *mockConfigRepo) AddTrackedUser(ctx context.Context, conversationID, userID int64) error {
	for _, u := range m.tracked[conversationID] {
		if u == userID {
			return nil
		}
	}
	m.tracked[conversationID] = append(m.tracked[conversationID], userID)
	return nil
}

func (m *mockConfigRepo) RemoveTrackedUser(ctx context.Context, conversationID, userID int64) error {
	m.tracked[conversationID] = removeUser(m.tracked[conversationID], userID)
	return nil
}

func (m *mockConfigRepo) ListTrackedUsers(ctx context.Context, conversationID int64) ([]int64, error) {
	return m.tracked[conversationID], nil
}

func removeUser(users []int64, userID int64) []int64 {
	var out []int64
	for _, u := range users {
		if u != userID {
			out = append(out, u)
		}
	}
	return out
}

type mockHistoryRepo struct {
	entries map[int64][]domain.HistoryEntry
	nextID  int64
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{entries: make(map[int64][]domain.HistoryEntry)}
}

func (m *mockHistoryRepo) Append(ctx context.Context, conversationID, authorID int64, text string, isBot bool) error {
	m.nextID++
	m.entries[conversationID] = append(m.entries[conversationID], domain.HistoryEntry{
		ID:             m.nextID,
		ConversationID: conversationID,
		AuthorID:       authorID,
		Text:           text,
		IsBot:          isBot,
	})
	return nil
}

func (m *mockHistoryRepo) Recent(ctx context.Context, conversationID int64, limit int) ([]domain.HistoryEntry, error) {
	entries := m.entries[conversationID]
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (m *mockHistoryRepo) Trim(ctx context.Context, conversationID int64, keepLast int) error {
	entries := m.entries[conversationID]
	if len(entries) > keepLast {
		m.entries[conversationID] = append([]domain.HistoryEntry(nil), entries[len(entries)-keepLast:]...)
	}
	return nil
}

func (m *mockHistoryRepo) Count(ctx context.Context, conversationID int64) (int, error) {
	return len(m.entries[conversationID]), nil
}

// countingDice records how often the gate consulted it
type countingDice struct {
	rolls []int
	calls int
}

func (d *countingDice) IntN(n int) int {
	d.calls++
	if len(d.rolls) == 0 {
		return 0
	}
	roll := d.rolls[0]
	if len(d.rolls) > 1 {
		d.rolls = d.rolls[1:]
	}
	return roll
}

// Tests

func TestDecide_FirstMessageCreatesConfigWithSenderAdmin(t *testing.T) {
	configRepo := newMockConfigRepo()
	uc := NewAdmissionUsecase(configRepo, &countingDice{})

	decision, err := uc.Decide(context.Background(), 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Config == nil {
		t.Fatal("Expected config to be set")
	}
	isAdmin, _ := configRepo.IsAdmin(context.Background(), 1, 100)
	if !isAdmin {
		t.Error("Expected first sender to become admin")
	}
}

func TestDecide_CommandClassification(t *testing.T) {
	configRepo := newMockConfigRepo()
	uc := NewAdmissionUsecase(configRepo, &countingDice{})

	decision, err := uc.Decide(context.Background(), 1, 100, "!Add-Admin  [id200|@user]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Outcome != domain.OutcomeCommand {
		t.Fatalf("Expected OutcomeCommand, got %v", decision.Outcome)
	}
	if decision.Command != "add-admin" {
		t.Errorf("Expected command 'add-admin', got '%s'", decision.Command)
	}
	if decision.Args != "[id200|@user]" {
		t.Errorf("Expected args '[id200|@user]', got '%s'", decision.Args)
	}
}

func TestDecide_BarePrefixIsCommand(t *testing.T) {
	configRepo := newMockConfigRepo()
	uc := NewAdmissionUsecase(configRepo, &countingDice{})

	decision, err := uc.Decide(context.Background(), 1, 100, "!")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Outcome != domain.OutcomeCommand {
		t.Errorf("Expected OutcomeCommand, got %v", decision.Outcome)
	}
	if decision.Command != "" {
		t.Errorf("Expected empty command token, got '%s'", decision.Command)
	}
}

func TestDecide_EmptyTrackedSetSuppresses(t *testing.T) {
	configRepo := newMockConfigRepo()
	dice := &countingDice{}
	uc := NewAdmissionUsecase(configRepo, dice)

	decision, err := uc.Decide(context.Background(), 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Outcome != domain.OutcomeSuppressed {
		t.Errorf("Expected OutcomeSuppressed, got %v", decision.Outcome)
	}
	if dice.calls != 0 {
		t.Error("Expected dice untouched when tracked set is empty")
	}
}

func TestDecide_UntrackedSenderSuppresses(t *testing.T) {
	configRepo := newMockConfigRepo()
	configRepo.AddTrackedUser(context.Background(), 1, 200)
	uc := NewAdmissionUsecase(configRepo, &countingDice{})

	decision, err := uc.Decide(context.Background(), 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Outcome != domain.OutcomeSuppressed {
		t.Errorf("Expected OutcomeSuppressed, got %v", decision.Outcome)
	}
}

func TestDecide_FullPercentageAdmitsWithoutDice(t *testing.T) {
	configRepo := newMockConfigRepo()
	configRepo.AddTrackedUser(context.Background(), 1, 100)
	dice := &countingDice{}
	uc := NewAdmissionUsecase(configRepo, dice)

	decision, err := uc.Decide(context.Background(), 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if decision.Outcome != domain.OutcomeAdmitted {
		t.Fatalf("Expected OutcomeAdmitted, got %v", decision.Outcome)
	}
	if dice.calls != 0 {
		t.Errorf("Expected no dice rolls at 100%%, got %d", dice.calls)
	}
}

func TestDecide_GateBoundary(t *testing.T) {
	ctx := context.Background()

	// IntN returns 29 -> roll 30 -> admitted at 30%
	configRepo := newMockConfigRepo()
	uc := NewAdmissionUsecase(configRepo, &countingDice{rolls: []int{29}})
	cfg, _ := configRepo.GetOrCreate(ctx, 1, 100)
	cfg.ResponsePercentage = 30
	configRepo.AddTrackedUser(ctx, 1, 100)

	decision, err := uc.Decide(ctx, 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Outcome != domain.OutcomeAdmitted {
		t.Errorf("Expected roll 30 admitted at 30%%, got %v", decision.Outcome)
	}

	// IntN returns 30 -> roll 31 -> suppressed at 30%
	uc = NewAdmissionUsecase(configRepo, &countingDice{rolls: []int{30}})
	decision, err = uc.Decide(ctx, 1, 100, "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Outcome != domain.OutcomeSuppressed {
		t.Errorf("Expected roll 31 suppressed at 30%%, got %v", decision.Outcome)
	}
}

func TestDecide_PercentageStatistics(t *testing.T) {
	ctx := context.Background()
	configRepo := newMockConfigRepo()
	dice := rand.New(rand.NewPCG(1, 2))
	uc := NewAdmissionUsecase(configRepo, dice)

	cfg, _ := configRepo.GetOrCreate(ctx, 1, 100)
	cfg.ResponsePercentage = 50
	configRepo.AddTrackedUser(ctx, 1, 100)

	admitted := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		decision, err := uc.Decide(ctx, 1, 100, "hello")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if decision.Outcome == domain.OutcomeAdmitted {
			admitted++
		}
	}

	// 50% of 10000 trials, 95% confidence band
	if admitted < 4500 || admitted > 5500 {
		t.Errorf("Expected admissions in [4500, 5500], got %d", admitted)
	}
}
