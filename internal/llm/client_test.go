package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/codelens/internal/config"
)

// cannedTransport replies with a fixed status and chat completion content,
// recording the request it saw
type cannedTransport struct {
	status   int
	content  string
	rawBody  string
	lastBody chatRequest
	lastAuth string
}

func (c *cannedTransport) Do(req *http.Request) (*http.Response, error) {
	reqBody, _ := io.ReadAll(req.Body)
	json.Unmarshal(reqBody, &c.lastBody)
	c.lastAuth = req.Header.Get("Authorization")

	body := c.rawBody
	if body == "" {
		data, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": c.content}},
			},
		})
		body = string(data)
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func newTestClient(t *testing.T, transport HTTPClient) *Client {
	t.Helper()

	client, err := NewClientWithHTTPClient(config.LLMConfig{
		BaseURL: "http://llm.test/v1",
		APIKey:  "sk-test",
		Model:   "test-model",
	}, transport)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestAnalyzeParsesVerdict(t *testing.T) {
	transport := &cannedTransport{
		status:  http.StatusOK,
		content: `{"score": 72, "summary": "Decent.", "issues": [{"severity": "error", "category": "bug", "line": 3, "message": "Off-by-one"}]}`,
	}
	client := newTestClient(t, transport)

	result, err := client.Analyze(context.Background(), "python", "print(1)")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Score != 72 {
		t.Errorf("Expected score 72, got %d", result.Score)
	}
	if result.Summary != "Decent." {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
	if len(result.Issues) != 1 || result.Issues[0].Message != "Off-by-one" {
		t.Errorf("Unexpected issues: %+v", result.Issues)
	}

	if transport.lastAuth != "Bearer sk-test" {
		t.Errorf("Expected API key header, got %q", transport.lastAuth)
	}
	if transport.lastBody.Model != "test-model" {
		t.Errorf("Expected configured model, got %q", transport.lastBody.Model)
	}
	if len(transport.lastBody.Messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(transport.lastBody.Messages))
	}
	if !strings.Contains(transport.lastBody.Messages[1].Content, "print(1)") {
		t.Error("Expected submitted code in the user prompt")
	}
}

func TestAnalyzeStripsMarkdownFences(t *testing.T) {
	transport := &cannedTransport{
		status:  http.StatusOK,
		content: "```json\n{\"score\": 50, \"summary\": \"ok\", \"issues\": []}\n```",
	}
	client := newTestClient(t, transport)

	result, err := client.Analyze(context.Background(), "sql", "SELECT 1")
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if result.Score != 50 {
		t.Errorf("Expected score 50, got %d", result.Score)
	}
}

func TestAnalyzeClampsScore(t *testing.T) {
	cases := []struct {
		raw  int
		want int
	}{
		{-5, 0},
		{0, 0},
		{100, 100},
		{140, 100},
	}
	for _, tc := range cases {
		transport := &cannedTransport{
			status:  http.StatusOK,
			content: `{"score": ` + jsonInt(tc.raw) + `, "summary": "x", "issues": []}`,
		}
		client := newTestClient(t, transport)

		result, err := client.Analyze(context.Background(), "java", "class A {}")
		if err != nil {
			t.Fatalf("score %d: expected no error, got %v", tc.raw, err)
		}
		if result.Score != tc.want {
			t.Errorf("score %d: expected clamp to %d, got %d", tc.raw, tc.want, result.Score)
		}
	}
}

func jsonInt(n int) string {
	data, _ := json.Marshal(n)
	return string(data)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	transport := &cannedTransport{
		status:  http.StatusTooManyRequests,
		rawBody: `{"error": {"message": "rate limit exceeded"}}`,
	}
	client := newTestClient(t, transport)

	_, err := client.Analyze(context.Background(), "python", "print(1)")
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("Expected upstream message surfaced, got %v", err)
	}
}

func TestAnalyzeNoChoices(t *testing.T) {
	transport := &cannedTransport{
		status:  http.StatusOK,
		rawBody: `{"choices": []}`,
	}
	client := newTestClient(t, transport)

	_, err := client.Analyze(context.Background(), "python", "print(1)")
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestAnalyzeMalformedVerdict(t *testing.T) {
	transport := &cannedTransport{
		status:  http.StatusOK,
		content: "Sure! Here is my review of your code.",
	}
	client := newTestClient(t, transport)

	_, err := client.Analyze(context.Background(), "python", "print(1)")
	if err == nil {
		t.Fatal("Expected error for non-JSON verdict")
	}
}

func TestBuildUserPromptIncludesLanguageHint(t *testing.T) {
	templates, err := LoadPromptTemplates("")
	if err != nil {
		t.Fatalf("Failed to load default templates: %v", err)
	}

	prompt := templates.BuildUserPrompt("python", "x = 1")
	if !strings.Contains(prompt, "PEP 8") {
		t.Error("Expected python hint in prompt")
	}
	if !strings.Contains(prompt, "x = 1") {
		t.Error("Expected code in prompt")
	}

	// Unknown language still produces a usable prompt
	prompt = templates.BuildUserPrompt("cobol", "MOVE 1 TO X")
	if !strings.Contains(prompt, "cobol") {
		t.Error("Expected language name in prompt")
	}
}
