package categorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/pdf-ledger/internal/logging"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

var errEmptyResponse = errors.New("no content in Gemini response")

// GenerateFunc sends a prompt and returns the model text.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiOptions configures GeminiClassifier.
type GeminiOptions struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// GeminiClassifier labels batches with a Gemini model.
type GeminiClassifier struct {
	generate GenerateFunc
	client   *genai.Client
	opts     GeminiOptions
	logger   logging.Logger
}

// NewGeminiClassifier connects to the Gemini API.
func NewGeminiClassifier(ctx context.Context, opts GeminiOptions, logger logging.Logger) (*GeminiClassifier, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0.1)

	g := NewGeminiClassifierWithGenerator(func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", errEmptyResponse
		}
		return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
	}, opts, logger)
	g.client = client
	return g, nil
}

// NewGeminiClassifierWithGenerator builds a classifier around an arbitrary
// generate function. Tests use it to avoid network calls.
func NewGeminiClassifierWithGenerator(fn GenerateFunc, opts GeminiOptions, logger logging.Logger) *GeminiClassifier {
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &GeminiClassifier{generate: fn, opts: opts, logger: logging.OrDefault(logger)}
}

// Name returns the classifier name for logging and stats.
func (g *GeminiClassifier) Name() string {
	return "gemini"
}

// Close releases the underlying client.
func (g *GeminiClassifier) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Classify sends one prompt for the whole batch.
func (g *GeminiClassifier) Classify(ctx context.Context, items []Item) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}

	reply, err := g.generateWithRetry(ctx, BuildPrompt(items))
	if err != nil {
		return nil, err
	}
	return ParseResponse(reply, items)
}

func (g *GeminiClassifier) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.opts.InitialInterval
	b.MaxInterval = g.opts.MaxInterval
	b.MaxElapsedTime = 0

	var reply string
	attempt := 0

	err := backoff.Retry(func() error {
		attemptCtx := ctx
		if g.opts.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
		}

		text, err := g.generate(attemptCtx, prompt)
		if err == nil {
			reply = text
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		attempt++
		if attempt > g.opts.MaxRetries {
			return backoff.Permanent(err)
		}
		g.logger.WithError(err).Warn("Gemini request failed, retrying",
			logging.F("retry", attempt))
		return err
	}, backoff.WithContext(b, ctx))

	return reply, err
}
