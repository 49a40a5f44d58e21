package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/codelens/internal/config"
)

// ReviewResult is the structured output of an analysis request
type ReviewResult struct {
	Score   int           `json:"score"`
	Summary string        `json:"summary"`
	Issues  []ReviewIssue `json:"issues"`
}

// ReviewIssue is a single finding reported by the model
type ReviewIssue struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Line     *int   `json:"line"`
	Message  string `json:"message"`
}

// Client calls an OpenAI-compatible chat completion endpoint to produce
// code reviews
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	templates  *PromptTemplates
	httpClient HTTPClient
}

// NewClient creates an analysis client from LLM configuration
func NewClient(cfg config.LLMConfig) (*Client, error) {
	templates, err := LoadPromptTemplates(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		templates:  templates,
		httpClient: NewRealHTTPClient(),
	}, nil
}

// NewClientWithHTTPClient creates an analysis client with a custom HTTP
// client (for testing)
func NewClientWithHTTPClient(cfg config.LLMConfig, httpClient HTTPClient) (*Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	client.httpClient = httpClient
	return client, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits code for review and parses the model's JSON verdict
func (c *Client) Analyze(ctx context.Context, language, code string) (*ReviewResult, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.templates.System},
			{Role: "user", Content: c.templates.BuildUserPrompt(language, code)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("llm request failed: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("llm request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm response contained no choices")
	}

	return parseReview(parsed.Choices[0].Message.Content)
}

// parseReview extracts the JSON verdict from the model output. Models
// occasionally wrap JSON in markdown fences despite instructions, so fences
// are stripped before parsing.
func parseReview(content string) (*ReviewResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var result ReviewResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse review verdict: %w", err)
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	return &result, nil
}
