package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned before any network I/O when no endpoint is set.
var ErrNotConfigured = errors.New("ollama endpoint not configured")

// APIError is a non-200 response from the generate endpoint.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama API error: HTTP %d", e.StatusCode)
}

// summaryPrompt frames the transcript for the model: bullet points, at most 5,
// each at most 30 characters. The template is fixed; only the text and model
// vary per call.
const summaryPrompt = `Summarize the key points of the following content:

%s

Answer as a bullet list. Each point must be at most 30 characters, with no more than 5 points total.`

// Client talks to an Ollama-compatible generate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a summarizer client. Generation is slow, so the timeout
// budget is 300 seconds.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// Configured reports whether a generate endpoint has been set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateSummary submits the transcript and returns the generated summary.
func (c *Client) GenerateSummary(ctx context.Context, text, model string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: fmt.Sprintf(summaryPrompt, text),
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[ollama] generating summary: model=%s input=%d chars", model, len(text))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode}
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return "", fmt.Errorf("malformed generate response: %w", err)
	}
	if gen.Response == "" {
		return "", fmt.Errorf("empty generate response")
	}

	return gen.Response, nil
}
