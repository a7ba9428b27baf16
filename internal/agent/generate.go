package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
)

// GenerateClient targets a single-shot text generation endpoint. The API
// key travels as a `key` query parameter and the prompt as a nested
// contents/parts payload.
type GenerateClient struct {
	cfg    Config
	http   *http.Client
	caller caller
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func NewGenerateClient(cfg Config) (*GenerateClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &GenerateClient{
		cfg:    cfg,
		http:   &http.Client{},
		caller: newCaller(cfg),
	}, nil
}

func (c *GenerateClient) Invoke(ctx context.Context, prompt string) (*Response, error) {
	return c.caller.invoke(ctx, func(ctx context.Context) (string, error) {
		return c.generate(ctx, prompt)
	})
}

func (c *GenerateClient) generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return "", newError(KindNetworkError, "encode request: %w", err)
	}

	endpoint, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", newError(KindClientError, "parse endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("key", c.cfg.APIKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), buf)
	if err != nil {
		return "", newError(KindClientError, "build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", newError(KindTimeout, "request timed out: %w", err)
		}
		return "", newError(KindNetworkError, "request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindNetworkError, "read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, string(raw))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", newError(KindMalformedResponse, "decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", newError(KindMalformedResponse, "response contains no candidates")
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", newError(KindMalformedResponse, "response text is empty")
	}
	return text, nil
}
