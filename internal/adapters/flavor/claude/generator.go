package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pet-care-tracker/internal/ports/flavor"
)

const DefaultModel = "claude-3-5-haiku-latest"

// Generator implementa flavor.Generator con la API de Anthropic.
type Generator struct {
	client *anthropic.Client
	model  anthropic.Model
}

func New(apiKey, model string, opts ...option.RequestOption) *Generator {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Generator{
		client: &client,
		model:  anthropic.Model(model),
	}
}

func (g *Generator) Generate(ctx context.Context, req flavor.Request) (flavor.Result, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 200
	}

	params := anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages:  toMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return flavor.Result{}, fmt.Errorf("claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return flavor.Result{}, fmt.Errorf("claude: empty response: %w", flavor.ErrUnavailable)
	}

	return flavor.Result{Text: text, Model: string(resp.Model)}, nil
}

// toMessages exige al menos un turno de usuario; si el prompt vive solo en
// System se agrega un turno mínimo.
func toMessages(in []flavor.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(in)+1)
	for _, m := range in {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		switch m.Role {
		case flavor.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	if len(out) == 0 {
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("Go ahead.")))
	}
	return out
}
