package responder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"chat-api/internal/domain/llm"
)

// OpenAIClient is a go-openai backed responder. It works against the
// OpenAI API or any compatible endpoint via a custom base URL.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a go-openai responder client.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Respond runs a chat completion over the labeled history.
func (c *OpenAIClient) Respond(ctx context.Context, prompt string, history []llm.Turn) (string, error) {
	turns := chatTurns(prompt, history)
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == llm.RoleAI {
			role = openai.ChatMessageRoleAssistant
		}
		messages[i] = openai.ChatCompletionMessage{Role: role, Content: turn.Text}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("responder request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("responder returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Ensure interface compliance.
var _ llm.Responder = (*OpenAIClient)(nil)
