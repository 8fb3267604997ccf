package static

import (
	"context"
	"strings"

	"pet-care-tracker/internal/ports/flavor"
)

const ModelName = "static"

// Generator devuelve siempre el mismo texto. Con texto vacío responde
// flavor.ErrUnavailable y los consumidores usan su respaldo.
type Generator struct {
	text string
}

func New(text string) *Generator {
	return &Generator{text: strings.TrimSpace(text)}
}

func (g *Generator) Generate(ctx context.Context, _ flavor.Request) (flavor.Result, error) {
	if err := ctx.Err(); err != nil {
		return flavor.Result{}, err
	}
	if g == nil || g.text == "" {
		return flavor.Result{}, flavor.ErrUnavailable
	}
	return flavor.Result{Text: g.text, Model: ModelName}, nil
}
