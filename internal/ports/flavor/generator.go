package flavor

import (
	"context"
	"errors"
)

// ErrUnavailable: no hay proveedor configurado o todos fallaron.
// Los consumidores caen a su texto de respaldo.
var ErrUnavailable = errors.New("text generation unavailable")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type Result struct {
	Text  string
	Model string
}

// Generator produce texto cosmético (nombres, comentarios, chat).
// Ninguna decisión de negocio depende de su salida.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}
