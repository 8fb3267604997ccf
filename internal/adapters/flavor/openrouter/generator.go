package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-care-tracker/internal/platform/httpclient"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/flavor"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModels se prueban en orden; el primero que responda gana.
var DefaultModels = []string{
	"google/gemma-2-9b-it:free",
	"meta-llama/llama-3.2-3b-instruct:free",
	"microsoft/phi-3-mini-128k-instruct:free",
	"deepseek/deepseek-r1:free",
}

type Config struct {
	BaseURL string
	APIKey  string
	Models  []string
	Referer string
	Title   string
	Timeout time.Duration
}

// Generator implementa flavor.Generator contra chat/completions de OpenRouter.
type Generator struct {
	http    *httpclient.Client
	apiKey  string
	models  []string
	headers map[string]string
	log     logger.Logger
}

func New(cfg Config, log logger.Logger) (*Generator, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc, err := httpclient.New(httpclient.Options{
		BaseURL:   base,
		Timeout:   timeout,
		UserAgent: "pet-care-tracker",
	})
	if err != nil {
		return nil, err
	}

	models := cfg.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	if log == nil {
		log = logger.Nop()
	}

	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	if cfg.Title != "" {
		headers["X-Title"] = cfg.Title
	}

	return &Generator{
		http:    hc,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		models:  models,
		headers: headers,
		log:     log.With(map[string]any{"component": "openrouter"}),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Generator) Generate(ctx context.Context, req flavor.Request) (flavor.Result, error) {
	if g.apiKey == "" {
		return flavor.Result{}, flavor.ErrUnavailable
	}

	msgs := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Text})
	}

	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	for k, v := range g.headers {
		headers[k] = v
	}

	var errs []error
	for _, model := range g.models {
		var out chatResponse
		err := g.http.JSON(ctx, httpclient.Call{
			Method: http.MethodPost,
			Path:   "/chat/completions",
			Header: headers,
			Body: chatRequest{
				Model:       model,
				Messages:    msgs,
				Temperature: req.Temperature,
				MaxTokens:   req.MaxTokens,
			},
		}, &out)
		if err != nil {
			g.log.Warn("model failed", map[string]any{"model": model, "err": err})
			errs = append(errs, fmt.Errorf("%s: %w", model, err))

			// Con la key rechazada ningún otro modelo va a responder.
			var he *httpclient.HTTPError
			if ctx.Err() != nil || (errors.As(err, &he) && he.Unauthorized()) {
				break
			}
			continue
		}
		if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
			errs = append(errs, fmt.Errorf("%s: empty response", model))
			continue
		}
		return flavor.Result{
			Text:  strings.TrimSpace(out.Choices[0].Message.Content),
			Model: model,
		}, nil
	}

	return flavor.Result{}, fmt.Errorf("%w: %w", flavor.ErrUnavailable, errors.Join(errs...))
}
