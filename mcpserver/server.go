package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"personabot/internal/biz/repo"
)

// PersonaMCPServer exposes read-only inspection tools over the bot's storage,
// so an operator's agent can examine conversation state while the bot runs
type PersonaMCPServer struct {
	server  *mcp.Server
	config  repo.ConfigRepo
	history repo.HistoryRepo
}

// NewServer creates a new persona MCP server
func NewServer(config repo.ConfigRepo, history repo.HistoryRepo) *PersonaMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "personabot-tools",
		Version: "v1.0.0",
	}, nil)

	s := &PersonaMCPServer{
		server:  server,
		config:  config,
		history: history,
	}
	s.registerTools()
	return s
}

func (s *PersonaMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "persona_get_status",
		Description: "Get the bot configuration for a conversation: persona, response settings, admin and tracked-user counts.",
	}, s.handleGetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "persona_get_history",
		Description: "Get recent stored messages of a conversation in chronological order.",
	}, s.handleGetHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "persona_list_admins",
		Description: "List admin user ids of a conversation.",
	}, s.handleListAdmins)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "persona_list_tracked_users",
		Description: "List tracked user ids of a conversation. The bot only replies to tracked users.",
	}, s.handleListTrackedUsers)
}

// GetStatusInput is the input for the get_status tool
type GetStatusInput struct {
	ConversationID int64 `json:"conversation_id" jsonschema:"description=The conversation (chat) id to inspect"`
}

// GetStatusOutput is the output for the get_status tool
type GetStatusOutput struct {
	PersonaRole        string `json:"persona_role"`
	PersonaTask        string `json:"persona_task"`
	ResponseLength     string `json:"response_length"`
	ResponsePercentage int    `json:"response_percentage"`
	MemorySize         int    `json:"memory_size"`
	Admins             int    `json:"admins"`
	TrackedUsers       int    `json:"tracked_users"`
	StoredMessages     int    `json:"stored_messages"`
	Error              string `json:"error,omitempty"`
}

func (s *PersonaMCPServer) handleGetStatus(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
	cfg, err := s.config.Get(ctx, input.ConversationID)
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	if cfg == nil {
		return nil, GetStatusOutput{Error: "conversation not found"}, nil
	}

	admins, err := s.config.ListAdmins(ctx, input.ConversationID)
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	tracked, err := s.config.ListTrackedUsers(ctx, input.ConversationID)
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	stored, err := s.history.Count(ctx, input.ConversationID)
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}

	return nil, GetStatusOutput{
		PersonaRole:        cfg.PersonaRole,
		PersonaTask:        cfg.PersonaTask,
		ResponseLength:     string(cfg.ResponseLength),
		ResponsePercentage: cfg.ResponsePercentage,
		MemorySize:         cfg.MemorySize,
		Admins:             len(admins),
		TrackedUsers:       len(tracked),
		StoredMessages:     stored,
	}, nil
}

// GetHistoryInput is the input for the get_history tool
type GetHistoryInput struct {
	ConversationID int64 `json:"conversation_id" jsonschema:"description=The conversation (chat) id to inspect"`
	Limit          int   `json:"limit,omitempty" jsonschema:"description=Maximum number of messages to retrieve (default 20)"`
}

// HistoryMessage is one stored message in tool output
type HistoryMessage struct {
	AuthorID  int64  `json:"author_id"`
	Text      string `json:"text"`
	IsBot     bool   `json:"is_bot"`
	Timestamp int64  `json:"timestamp"`
}

// GetHistoryOutput is the output for the get_history tool
type GetHistoryOutput struct {
	Messages []HistoryMessage `json:"messages"`
	Error    string           `json:"error,omitempty"`
}

func (s *PersonaMCPServer) handleGetHistory(ctx context.Context, req *mcp.CallToolRequest, input GetHistoryInput) (*mcp.CallToolResult, GetHistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, err := s.history.Recent(ctx, input.ConversationID, limit)
	if err != nil {
		return nil, GetHistoryOutput{Error: err.Error()}, nil
	}

	messages := make([]HistoryMessage, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, HistoryMessage{
			AuthorID:  e.AuthorID,
			Text:      e.Text,
			IsBot:     e.IsBot,
			Timestamp: e.CreatedAt.Unix(),
		})
	}
	return nil, GetHistoryOutput{Messages: messages}, nil
}

// ListUsersInput is the input for the list tools
type ListUsersInput struct {
	ConversationID int64 `json:"conversation_id" jsonschema:"description=The conversation (chat) id to inspect"`
}

// ListUsersOutput is the output for the list tools
type ListUsersOutput struct {
	UserIDs []int64 `json:"user_ids"`
	Error   string  `json:"error,omitempty"`
}

func (s *PersonaMCPServer) handleListAdmins(ctx context.Context, req *mcp.CallToolRequest, input ListUsersInput) (*mcp.CallToolResult, ListUsersOutput, error) {
	users, err := s.config.ListAdmins(ctx, input.ConversationID)
	if err != nil {
		return nil, ListUsersOutput{Error: err.Error()}, nil
	}
	return nil, ListUsersOutput{UserIDs: users}, nil
}

func (s *PersonaMCPServer) handleListTrackedUsers(ctx context.Context, req *mcp.CallToolRequest, input ListUsersInput) (*mcp.CallToolResult, ListUsersOutput, error) {
	users, err := s.config.ListTrackedUsers(ctx, input.ConversationID)
	if err != nil {
		return nil, ListUsersOutput{Error: err.Error()}, nil
	}
	return nil, ListUsersOutput{UserIDs: users}, nil
}

// Run starts the MCP server with stdio transport
func (s *PersonaMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
