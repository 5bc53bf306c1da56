package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is where LM Studio serves its OpenAI-compatible API.
	DefaultBaseURL = "http://localhost:1234"

	// DefaultCheckTimeout bounds the reachability check.
	DefaultCheckTimeout = 5 * time.Second

	modelsPath          = "/v1/models"
	chatCompletionsPath = "/v1/chat/completions"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL of the model server. Empty means DefaultBaseURL.
	BaseURL string

	// RequestTimeout bounds listing and completion calls. Zero means no
	// timeout: a hung server stalls the caller until its context ends.
	RequestTimeout time.Duration

	// CheckTimeout bounds CheckConnection. Zero means DefaultCheckTimeout.
	CheckTimeout time.Duration
}

// Client is a Service backed by an OpenAI-compatible HTTP endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	checkTimeout time.Duration
}

var _ Service = (*Client)(nil)

// NewClient creates a client for the server described by cfg.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	checkTimeout := cfg.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:      baseURL,
		checkTimeout: checkTimeout,
	}
}

// BaseURL returns the resolved server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Wire types ---

type modelsResponse struct {
	Data   []modelEntry `json:"data"`
	Object string       `json:"object"`
}

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiErr `json:"error,omitempty"`
}

type apiErr struct {
	Message string `json:"message"`
}

// --- Operations ---

// CheckConnection queries the models endpoint. Any transport error, timeout or
// non-2xx response counts as unreachable.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to build reachability request")
		return false
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("base_url", c.baseURL).Dur("duration", time.Since(start)).Msg("Model server unreachable")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	log.Debug().
		Str("base_url", c.baseURL).
		Int("status_code", resp.StatusCode).
		Bool("reachable", ok).
		Dur("duration", time.Since(start)).
		Msg("Reachability check complete")
	return ok
}

// ListModels returns the models the server advertises.
func (c *Client) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	const op = "Failed to fetch models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse models response: %w (body: %s)", err, truncate(string(body), 200))
	}

	models := make([]ModelDescriptor, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		models = append(models, ModelDescriptor{ID: m.ID, OwnedBy: m.OwnedBy})
	}

	log.Debug().Int("count", len(models)).Msg("Listed models")
	return models, nil
}

// DescribeImage asks modelID for a filename suggestion for image. The image
// travels as a base64 data URI tagged with mimeType.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mimeType, modelID string) (string, error) {
	const op = "API request failed"

	payload := chatRequest{
		Model: modelID,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: RenameInstruction},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI(image, mimeType)}},
			},
		}},
		MaxTokens:   describeMaxTokens,
		Temperature: describeTemperature,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("model", modelID).
		Str("mime_type", mimeType).
		Int("image_bytes", len(image)).
		Msg("Requesting filename suggestion")

	body, err := c.do(req, op)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse completion response: %w (body: %s)", err, truncate(string(body), 200))
	}

	if parsed.Error != nil {
		log.Debug().Str("error_message", parsed.Error.Message).Msg("Model server reported an error")
		return "", &APIError{Message: parsed.Error.Message}
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	suggestion := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if suggestion == "" {
		return "", ErrEmptyResponse
	}

	log.Debug().Str("model", modelID).Str("suggestion", suggestion).Msg("Received filename suggestion")
	return suggestion, nil
}

// --- Internal helpers ---

// do sends req and returns the body of a 2xx response. Transport failures
// and other statuses become a *NetworkError tagged with op.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("Model server request")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Debug().Int("status_code", 0).Dur("duration", duration).Err(err).Msg("Model server response")
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().Int("status_code", resp.StatusCode).Dur("duration", duration).Msg("Model server response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(op, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}

// dataURI encodes image as a data: URI.
func dataURI(image []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// truncate returns the first n characters of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
