package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"personabot/internal/biz/domain"
	"personabot/internal/biz/repo"
)

// CommandUsecase routes admin commands. Every failure is reported as returned
// text, never as an error to the caller.
type CommandUsecase struct {
	configRepo  repo.ConfigRepo
	historyRepo repo.HistoryRepo
}

// NewCommandUsecase creates a new command usecase
func NewCommandUsecase(configRepo repo.ConfigRepo, historyRepo repo.HistoryRepo) *CommandUsecase {
	return &CommandUsecase{
		configRepo:  configRepo,
		historyRepo: historyRepo,
	}
}

const (
	deniedReply  = "This command is available to bot admins only."
	unknownReply = "Unknown command. Use !help for the list of commands."
	failureReply = "Failed to apply the command, please try again."
)

// Russian command names from the original deployment stay usable as aliases
var commandAliases = map[string]string{
	"помощь":                "help",
	"команды":               "commands",
	"добавить_админа":       "add-admin",
	"удалить_админа":        "remove-admin",
	"список_админов":        "list-admins",
	"установить_роль":       "set-role",
	"установить_задачу":     "set-task",
	"установить_мозги":      "set-brain",
	"длина_ответов":         "set-response-length",
	"процент_ответов":       "set-response-percentage",
	"размер_памяти":         "set-memory-size",
	"добавить_пользователя": "add-user",
	"удалить_пользователя":  "remove-user",
	"список_пользователей":  "list-users",
	"статус":                "status",
}

// Handle routes one command and returns the reply text
func (uc *CommandUsecase) Handle(ctx context.Context, conversationID, userID int64, command, args string) string {
	if canonical, ok := commandAliases[command]; ok {
		command = canonical
	}

	isAdmin, err := uc.configRepo.IsAdmin(ctx, conversationID, userID)
	if err != nil {
		log.Printf("[Command] IsAdmin error conversation=%d user=%d: %v", conversationID, userID, err)
		return failureReply
	}

	// Public commands
	switch command {
	case "help", "commands":
		return uc.helpMessage(isAdmin)
	}

	if !isAdmin {
		return deniedReply
	}

	switch command {
	case "add-admin":
		return uc.addAdmin(ctx, conversationID, args)
	case "remove-admin":
		return uc.removeAdmin(ctx, conversationID, args)
	case "list-admins":
		return uc.listAdmins(ctx, conversationID)
	case "set-role":
		return uc.setRole(ctx, conversationID, args)
	case "set-task":
		return uc.setTask(ctx, conversationID, args)
	case "set-brain":
		return uc.setBrain(ctx, conversationID, args)
	case "set-response-length":
		return uc.setResponseLength(ctx, conversationID, args)
	case "set-response-percentage":
		return uc.setResponsePercentage(ctx, conversationID, args)
	case "set-memory-size":
		return uc.setMemorySize(ctx, conversationID, args)
	case "add-user":
		return uc.addTrackedUser(ctx, conversationID, args)
	case "remove-user":
		return uc.removeTrackedUser(ctx, conversationID, args)
	case "list-users":
		return uc.listTrackedUsers(ctx, conversationID)
	case "status":
		return uc.status(ctx, conversationID)
	}

	return unknownReply
}

func (uc *CommandUsecase) helpMessage(isAdmin bool) string {
	base := `Bot commands:

General:
!help - show this message
!commands - show this message
`

	if !isAdmin {
		return base + "\nAdmin rights are required for configuration commands."
	}

	return base + `
Admin management:
!add-admin [id] - add an admin
!remove-admin [id] - remove an admin
!list-admins - list all admins

Persona:
!set-role [text] - set the bot role
!set-task [text] - set the bot task
!set-brain [role] | [task] - set both at once

Replies:
!set-response-length [short/medium/long] - reply length
!set-response-percentage [1-100] - share of messages answered
!set-memory-size [number] - messages kept as context

Tracked users:
!add-user [id] - track a user
!remove-user [id] - stop tracking a user
!list-users - list tracked users

!status - show current settings

Examples:
!set-role A truck driver with 20 years on the road
!set-task Pass the time behind the wheel
!set-response-length medium
!set-response-percentage 50
!add-user 123456789`
}

// User-id extraction: mention markup with embedded digits first, then a bare
// id-prefixed token, then any digit run. First match wins.
var userIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[id(\d+)\|`),
	regexp.MustCompile(`id(\d+)`),
	regexp.MustCompile(`(\d+)`),
}

func extractUserID(args string) (int64, bool) {
	for _, p := range userIDPatterns {
		if m := p.FindStringSubmatch(args); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			return id, true
		}
	}
	return 0, false
}

func (uc *CommandUsecase) addAdmin(ctx context.Context, conversationID int64, args string) string {
	userID, ok := extractUserID(args)
	if !ok {
		return "Provide a user id. Example: !add-admin 123456789"
	}
	if err := uc.configRepo.AddAdmin(ctx, conversationID, userID); err != nil {
		log.Printf("[Command] AddAdmin error conversation=%d user=%d: %v", conversationID, userID, err)
		return failureReply
	}
	return fmt.Sprintf("User %d added to admins.", userID)
}

func (uc *CommandUsecase) removeAdmin(ctx context.Context, conversationID int64, args string) string {
	userID, ok := extractUserID(args)
	if !ok {
		return "Provide a user id. Example: !remove-admin 123456789"
	}
	if err := uc.configRepo.RemoveAdmin(ctx, conversationID, userID); err != nil {
		log.Printf("[Command] RemoveAdmin error conversation=%d user=%d: %v", conversationID, userID, err)
		return failureReply
	}
	return fmt.Sprintf("User %d removed from admins.", userID)
}

func (uc *CommandUsecase) listAdmins(ctx context.Context, conversationID int64) string {
	admins, err := uc.configRepo.ListAdmins(ctx, conversationID)
	if err != nil {
		log.Printf("[Command] ListAdmins error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	if len(admins) == 0 {
		return "No admins assigned."
	}
	return "Conversation admins:\n" + formatUserList(admins)
}

func (uc *CommandUsecase) setRole(ctx context.Context, conversationID int64, args string) string {
	role := strings.TrimSpace(args)
	if role == "" {
		return "Provide a role. Example: !set-role A truck driver"
	}
	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{PersonaRole: &role}); err != nil {
		log.Printf("[Command] SetRole error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return "Persona role set: " + role
}

func (uc *CommandUsecase) setTask(ctx context.Context, conversationID int64, args string) string {
	task := strings.TrimSpace(args)
	if task == "" {
		return "Provide a task. Example: !set-task Pass the time behind the wheel"
	}
	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{PersonaTask: &task}); err != nil {
		log.Printf("[Command] SetTask error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return "Persona task set: " + task
}

func (uc *CommandUsecase) setBrain(ctx context.Context, conversationID int64, args string) string {
	if !strings.Contains(args, "|") {
		return "Separate role and task with |. Example: !set-brain Truck driver | Pass the time"
	}
	parts := strings.SplitN(args, "|", 2)
	role := strings.TrimSpace(parts[0])
	task := strings.TrimSpace(parts[1])

	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{
		PersonaRole: &role,
		PersonaTask: &task,
	}); err != nil {
		log.Printf("[Command] SetBrain error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return fmt.Sprintf("Persona updated:\nRole: %s\nTask: %s", role, task)
}

func (uc *CommandUsecase) setResponseLength(ctx context.Context, conversationID int64, args string) string {
	length, ok := domain.ParseResponseLength(strings.ToLower(strings.TrimSpace(args)))
	if !ok {
		return "Allowed values: short, medium, long"
	}
	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{ResponseLength: &length}); err != nil {
		log.Printf("[Command] SetResponseLength error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return "Response length set: " + string(length)
}

func (uc *CommandUsecase) setResponsePercentage(ctx context.Context, conversationID int64, args string) string {
	pct, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || pct < 1 || pct > 100 {
		return "Provide a number between 1 and 100"
	}
	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{ResponsePercentage: &pct}); err != nil {
		log.Printf("[Command] SetResponsePercentage error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return fmt.Sprintf("Response percentage set: %d%%", pct)
}

func (uc *CommandUsecase) setMemorySize(ctx context.Context, conversationID int64, args string) string {
	size, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || size < 1 {
		return "Provide a positive number"
	}
	if err := uc.configRepo.Update(ctx, conversationID, domain.ConfigUpdate{MemorySize: &size}); err != nil {
		log.Printf("[Command] SetMemorySize error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	return fmt.Sprintf("Memory size set: %d messages", size)
}

func (uc *CommandUsecase) addTrackedUser(ctx context.Context, conversationID int64, args string) string {
	userID, ok := extractUserID(args)
	if !ok {
		return "Provide a user id. Example: !add-user 123456789"
	}
	if err := uc.configRepo.AddTrackedUser(ctx, conversationID, userID); err != nil {
		log.Printf("[Command] AddTrackedUser error conversation=%d user=%d: %v", conversationID, userID, err)
		return failureReply
	}
	return fmt.Sprintf("User %d added to the tracked list.", userID)
}

func (uc *CommandUsecase) removeTrackedUser(ctx context.Context, conversationID int64, args string) string {
	userID, ok := extractUserID(args)
	if !ok {
		return "Provide a user id. Example: !remove-user 123456789"
	}
	if err := uc.configRepo.RemoveTrackedUser(ctx, conversationID, userID); err != nil {
		log.Printf("[Command] RemoveTrackedUser error conversation=%d user=%d: %v", conversationID, userID, err)
		return failureReply
	}
	return fmt.Sprintf("User %d removed from the tracked list.", userID)
}

func (uc *CommandUsecase) listTrackedUsers(ctx context.Context, conversationID int64) string {
	users, err := uc.configRepo.ListTrackedUsers(ctx, conversationID)
	if err != nil {
		log.Printf("[Command] ListTrackedUsers error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	if len(users) == 0 {
		return "No tracked users. Use !add-user to add one."
	}
	return "Tracked users:\n" + formatUserList(users)
}

func (uc *CommandUsecase) status(ctx context.Context, conversationID int64) string {
	cfg, err := uc.configRepo.GetOrCreate(ctx, conversationID, 0)
	if err != nil {
		log.Printf("[Command] Status error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	admins, err := uc.configRepo.ListAdmins(ctx, conversationID)
	if err != nil {
		log.Printf("[Command] Status ListAdmins error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	tracked, err := uc.configRepo.ListTrackedUsers(ctx, conversationID)
	if err != nil {
		log.Printf("[Command] Status ListTrackedUsers error conversation=%d: %v", conversationID, err)
		return failureReply
	}
	stored, err := uc.historyRepo.Count(ctx, conversationID)
	if err != nil {
		log.Printf("[Command] Status Count error conversation=%d: %v", conversationID, err)
		return failureReply
	}

	role := cfg.PersonaRole
	if role == "" {
		role = "not set"
	}
	task := cfg.PersonaTask
	if task == "" {
		task = "not set"
	}

	return fmt.Sprintf(`Current bot settings:

Role: %s
Task: %s
Response length: %s
Response percentage: %d%%
Memory size: %d messages
Admins: %d
Tracked users: %d
Stored messages: %d`,
		role, task, cfg.ResponseLength, cfg.ResponsePercentage, cfg.MemorySize,
		len(admins), len(tracked), stored)
}

func formatUserList(users []int64) string {
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("- %d", u))
	}
	return strings.Join(lines, "\n")
}
