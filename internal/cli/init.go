package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/auth"
	"github.com/fpang/vision-rename/internal/config"
	"github.com/fpang/vision-rename/internal/filehandler"
	"github.com/fpang/vision-rename/internal/vision"
)

// NewService creates the model service for the configured provider.
func NewService(ctx context.Context, cfg config.Config) (vision.Service, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		apiKey, err := auth.GetAPIKey(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		svc, err := vision.NewGeminiClient(ctx, vision.GeminiConfig{
			APIKey:       apiKey,
			CheckTimeout: cfg.CheckTimeout,
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Msg("Gemini client initialized")
		return svc, nil

	case config.ProviderLocal, "":
		c := vision.NewClient(vision.ClientConfig{
			BaseURL:        cfg.BaseURL,
			RequestTimeout: cfg.RequestTimeout,
			CheckTimeout:   cfg.CheckTimeout,
		})
		log.Debug().Str("base_url", c.BaseURL()).Msg("Local model client initialized")
		return c, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// DefaultModel is the model to use when none was chosen: the configured
// one, else the Gemini default for the gemini provider. Empty means the
// caller picks from the server's list.
func DefaultModel(cfg config.Config) string {
	if cfg.Model == "" && cfg.Provider == config.ProviderGemini {
		return vision.DefaultGeminiModel
	}
	return cfg.Model
}

// NewPreprocessor creates the image preprocessor from cfg.
func NewPreprocessor(cfg config.Config) *filehandler.Preprocessor {
	p := filehandler.NewPreprocessor()
	if cfg.MaxDimension > 0 {
		p.MaxDimension = cfg.MaxDimension
	}
	if cfg.JPEGQuality > 0 {
		p.Quality = cfg.JPEGQuality
	}
	p.ScratchDir = cfg.ScratchDir
	return p
}
