package agent

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// defaultChatModel is used when no model is configured and none can be
// derived from the endpoint.
const defaultChatModel = "llama3-8b-8192"

// ChatClient targets an OpenAI-compatible chat-completions endpoint. The
// configured endpoint is the API base URL; the model is optional.
type ChatClient struct {
	cfg    Config
	api    *openai.Client
	model  string
	caller caller
}

func NewChatClient(cfg Config) (*ChatClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = cfg.Endpoint

	model := cfg.Model
	if model == "" {
		model = defaultChatModel
	}

	return &ChatClient{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(apiConfig),
		model:  model,
		caller: newCaller(cfg),
	}, nil
}

func (c *ChatClient) Invoke(ctx context.Context, prompt string) (*Response, error) {
	return c.caller.invoke(ctx, func(ctx context.Context) (string, error) {
		return c.chat(ctx, prompt)
	})
}

func (c *ChatClient) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(KindMalformedResponse, "response contains no choices")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", newError(KindMalformedResponse, "response text is empty")
	}
	return text, nil
}

// classifyOpenAIError maps go-openai errors onto failure kinds.
func classifyOpenAIError(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: classifyStatus(apiErr.HTTPStatusCode), Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: classifyStatus(reqErr.HTTPStatusCode), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetworkError, Err: err}
}
