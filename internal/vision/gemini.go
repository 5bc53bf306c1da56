package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the gemini provider runs without --model.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a Service backed by the Gemini API.
type GeminiClient struct {
	client       *genai.Client
	checkTimeout time.Duration
}

var _ Service = (*GeminiClient)(nil)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL      string
	CheckTimeout time.Duration
}

// NewGeminiClient creates a Gemini-backed service authenticated with
// cfg.APIKey.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key not set (GEMINI_API_KEY or gemini_api_key)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	checkTimeout := cfg.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	return &GeminiClient{client: client, checkTimeout: checkTimeout}, nil
}

// CheckConnection lists a single model within the check timeout.
func (g *GeminiClient) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	if _, err := g.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		log.Debug().Err(err).Msg("Gemini API unreachable")
		return false
	}
	return true
}

// ListModels returns the Gemini models that support content generation.
func (g *GeminiClient) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	var models []ModelDescriptor
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, geminiError("Failed to fetch models", err)
		}
		if !slices.Contains(m.SupportedActions, "generateContent") {
			continue
		}
		models = append(models, ModelDescriptor{
			ID:      strings.TrimPrefix(m.Name, "models/"),
			OwnedBy: "google",
		})
	}
	return models, nil
}

// DescribeImage sends the rename instruction and the image inline.
func (g *GeminiClient) DescribeImage(ctx context.Context, image []byte, mimeType, modelID string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: describeMaxTokens,
		Temperature:     genai.Ptr[float32](describeTemperature),
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: RenameInstruction},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, modelID, contents, config)
	if err != nil {
		log.Debug().Err(err).Dur("duration", time.Since(start)).Msg("Gemini request failed")
		return "", geminiError("API request failed", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	suggestion := strings.TrimSpace(resp.Text())
	if suggestion == "" {
		return "", ErrEmptyResponse
	}

	log.Debug().
		Str("model", modelID).
		Str("suggestion", suggestion).
		Dur("duration", time.Since(start)).
		Msg("Received filename suggestion from Gemini")
	return suggestion, nil
}

// geminiError maps Gemini SDK failures onto the package error types: HTTP
// failures become a *NetworkError with the status code, anything else is
// wrapped as-is. The SDK returns APIError by value.
func geminiError(op string, err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if errors.As(err, &ptr) && ptr != nil {
			apiErr = *ptr
		}
	}
	if apiErr.Code != 0 {
		status := http.StatusText(apiErr.Code)
		if apiErr.Message != "" {
			status = apiErr.Message
		}
		return &NetworkError{Op: op, StatusCode: apiErr.Code, Status: status}
	}
	return &NetworkError{Op: op, Err: err}
}
