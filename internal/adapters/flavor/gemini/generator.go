package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pet-care-tracker/internal/ports/flavor"
)

const DefaultModel = "gemini-2.0-flash"

// Generator implementa flavor.Generator con la API de Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, req flavor.Request) (flavor.Result, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, toContents(req.Messages), toConfig(req))
	if err != nil {
		return flavor.Result{}, fmt.Errorf("gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return flavor.Result{}, fmt.Errorf("gemini: empty response: %w", flavor.ErrUnavailable)
	}

	model := resp.ModelVersion
	if model == "" {
		model = g.model
	}
	return flavor.Result{Text: text, Model: model}, nil
}

func toConfig(req flavor.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, "")
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	return cfg
}

// toContents: Gemini llama "model" al rol assistant.
func toContents(in []flavor.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(in)+1)
	for _, m := range in {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := genai.RoleUser
		if m.Role == flavor.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Text, genai.Role(role)))
	}
	if len(out) == 0 {
		out = append(out, genai.NewContentFromText("Go ahead.", genai.RoleUser))
	}
	return out
}
