package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimdesk/internal/config"
	"claimdesk/internal/inference"
	"claimdesk/internal/port"
)

const providerName = "vllm"

func init() {
	inference.RegisterProvider(providerName, func(cfg *config.InferenceConfig) (port.InferenceClient, error) {
		return NewClient(cfg), nil
	})
}

// Client implements port.InferenceClient against an OpenAI-compatible
// chat-completions endpoint, as served by vLLM.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient creates a vLLM-backed inference client from a provider config.
func NewClient(cfg *config.InferenceConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "Qwen/Qwen3-0.6B"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Generate(ctx context.Context, req port.InferenceRequest) (*port.InferenceResponse, error) {
	prompt := inference.BuildExtractionPrompt(req.Text, req.Schema)

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": inference.SystemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": req.Options.Temperature,
		"max_tokens":  req.Options.MaxOutputTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling inference service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		se := &inference.ServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 300),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			secs := inference.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			se.RetryAfter = time.Duration(secs) * time.Second
		}
		return nil, se
	}

	return parseResponse(respBody, c.model)
}

// apiResponse models the OpenAI-compatible chat completion response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string `json:"model"`
}

func parseResponse(body []byte, model string) (*port.InferenceResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &inference.MalformedResponseError{
			Provider: providerName,
			Reason:   "unparseable completion envelope: " + err.Error(),
			Raw:      truncate(string(body), 300),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &inference.MalformedResponseError{
			Provider: providerName,
			Reason:   "empty choices",
			Raw:      truncate(string(body), 300),
		}
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, &inference.MalformedResponseError{
			Provider: providerName,
			Reason:   "output truncated at token limit",
			Raw:      truncate(resp.Choices[0].Message.Content, 300),
		}
	}
	if resp.Model != "" {
		model = resp.Model
	}

	raw, err := ExtractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &inference.MalformedResponseError{
			Provider: providerName,
			Reason:   err.Error(),
			Raw:      truncate(resp.Choices[0].Message.Content, 300),
		}
	}
	return &port.InferenceResponse{RawJSON: raw, Model: model}, nil
}

// ExtractJSONObject pulls the first top-level JSON object out of model text,
// tolerating markdown code fences and surrounding prose.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("model output is not valid JSON")
	}
	return json.RawMessage(candidate), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
