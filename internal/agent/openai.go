package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAI runs the companion on an OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Probe looks up the configured model, which exercises the key without
// spending completion tokens.
func (c *OpenAI) Probe(ctx context.Context) error {
	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		return classifyOpenAI("probe", err)
	}
	return nil
}

func (c *OpenAI) Greet(ctx context.Context) (string, error) {
	return c.complete(ctx, "greet", nil, GreetingPrompt)
}

func (c *OpenAI) Send(ctx context.Context, history []Message, text string) (string, error) {
	return c.complete(ctx, "send", history, text)
}

func (c *OpenAI) complete(ctx context.Context, op string, history []Message, text string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: Persona})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAgent {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", classifyOpenAI(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Op: op, Err: errors.New("no choices in completion")}
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", &Error{Kind: KindMalformed, Op: op, Err: errors.New("empty reply")}
	}
	return reply, nil
}

func classifyOpenAI(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindForStatus(apiErr.HTTPStatusCode), Op: op, Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: kindForStatus(reqErr.HTTPStatusCode), Op: op, Status: reqErr.HTTPStatusCode, Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}
