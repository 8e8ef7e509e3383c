package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/aydinholding/report-service/internal/domain/ai"
	"github.com/aydinholding/report-service/internal/infra/ai/prompt"
)

const maxTokens = 4096

// Retry applies only to rate-limit-class errors; everything else propagates
// immediately to the caller.
const maxAttempts = 3

type Client struct {
	*openai.Client
	Model string

	// sleep is swappable in tests
	sleep func(time.Duration)
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, sleep: time.Sleep}
}

// Draft generates report prose from the assembled payload.
func (c *Client) Draft(ctx context.Context, req domai.DraftRequest) (string, error) {
	return c.chat(ctx,
		prompt.GetDraftSystemPrompt(),
		prompt.GetDraftUserPrompt(req.ProjectName, req.Payload, req.UserNotes),
	)
}

// RenderLayout asks the model for a full HTML document; the renderer decides
// whether the response is usable.
func (c *Client) RenderLayout(ctx context.Context, req domai.LayoutRequest) (string, error) {
	return c.chat(ctx, prompt.GetLayoutSystemPrompt(), prompt.GetLayoutUserPrompt(req))
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4o
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(time.Duration(1<<attempt) * time.Second)
		}
		resp, err := c.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("chat completion returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}
		if !isRateLimited(err) {
			return "", fmt.Errorf("failed to create chat completion: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", domai.ErrRateLimited, lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	return false
}
