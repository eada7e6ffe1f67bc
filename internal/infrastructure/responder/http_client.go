package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"chat-api/internal/domain/llm"
)

// HTTPClient is a Resty-backed responder against an OpenAI-compatible
// chat completion endpoint.
type HTTPClient struct {
	httpClient *resty.Client
	model      string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewHTTPClient creates a Resty-backed responder client.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &HTTPClient{
		httpClient: client,
		model:      model,
	}
}

// Respond calls POST /v1/chat/completions with the labeled history.
func (c *HTTPClient) Respond(ctx context.Context, prompt string, history []llm.Turn) (string, error) {
	turns := chatTurns(prompt, history)
	messages := make([]chatMessage, len(turns))
	for i, turn := range turns {
		messages[i] = chatMessage{Role: roleFor(turn.Role), Content: turn.Text}
	}

	var completion chatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{Model: c.model, Messages: messages}).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("responder request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("responder error: %s", resp.String())
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("responder returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// Ensure interface compliance.
var _ llm.Responder = (*HTTPClient)(nil)
