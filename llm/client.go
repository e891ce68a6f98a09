package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const requestTimeout = 30 * time.Second

// Turn is one conversation turn sent to the model
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client is the chat model client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new chat model client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Chat sends a system prompt plus conversation turns and returns the reply
func (c *Client) Chat(ctx context.Context, systemPrompt string, turns []Turn, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: t.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.9,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}
