package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/monitoring"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SystemPrompt establishes the assistant persona for every completion.
const SystemPrompt = "You are a product review assistant for Gearinhere."

// Options configures the completion client.
type Options struct {
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	RatePerMinute int // 0 disables throttling
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generator drafts reviews through a chat-completion endpoint.
// Each call is billable; the optional limiter caps how often it happens.
type Generator struct {
	client  *resty.Client
	model   string
	limiter *rate.Limiter
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewGenerator(opts Options, m *monitoring.Metrics, l *zap.Logger) *Generator {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetAuthToken(opts.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(opts.Timeout)

	g := &Generator{
		client:  client,
		model:   opts.Model,
		metrics: m,
		logger:  l,
	}
	if opts.RatePerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}
	return g
}

// Generate sends prompt as the user message and returns the first choice verbatim.
// Every failure wraps domain.ErrGeneration.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer g.metrics.ObserveStage("generate", start)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", g.fail(fmt.Errorf("%w: %v", domain.ErrGeneration, err))
		}
	}

	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	res, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", g.fail(fmt.Errorf("%w: %v", domain.ErrGeneration, err))
	}

	if res.StatusCode() != http.StatusOK {
		var apiErr apiError
		detail := http.StatusText(res.StatusCode())
		if json.Unmarshal(res.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			detail = apiErr.Error.Message
		}
		return "", g.fail(fmt.Errorf("%w: status %d: %s", domain.ErrGeneration, res.StatusCode(), detail))
	}

	var completion chatResponse
	if err := json.Unmarshal(res.Body(), &completion); err != nil {
		return "", g.fail(fmt.Errorf("%w: decode response: %v", domain.ErrGeneration, err))
	}
	if len(completion.Choices) == 0 {
		return "", g.fail(fmt.Errorf("%w: response has no choices", domain.ErrGeneration))
	}

	g.metrics.IncGeneration("completed")
	g.logger.Info("generated review",
		zap.String("model", g.model),
		zap.Int("chars", len(completion.Choices[0].Message.Content)),
		zap.Duration("took", time.Since(start)),
	)
	return completion.Choices[0].Message.Content, nil
}

func (g *Generator) fail(err error) error {
	g.metrics.IncGeneration("failed")
	g.logger.Error("review generation failed", zap.String("model", g.model), zap.Error(err))
	return err
}
