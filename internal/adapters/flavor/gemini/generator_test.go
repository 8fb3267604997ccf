package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"pet-care-tracker/internal/ports/flavor"
)

func TestToContents_MapsAssistantToModel(t *testing.T) {
	out := toContents([]flavor.Message{
		{Role: flavor.RoleUser, Text: "hola"},
		{Role: flavor.RoleAssistant, Text: "miau"},
		{Role: flavor.RoleUser, Text: ""},
	})
	require.Len(t, out, 2)
	assert.Equal(t, string(genai.RoleUser), out[0].Role)
	assert.Equal(t, string(genai.RoleModel), out[1].Role)
}

func TestToContents_EmptyGetsUserTurn(t *testing.T) {
	out := toContents(nil)
	require.Len(t, out, 1)
	assert.Equal(t, string(genai.RoleUser), out[0].Role)
}

func TestToConfig(t *testing.T) {
	cfg := toConfig(flavor.Request{System: "be nice", MaxTokens: 120, Temperature: 0.8})
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, int32(120), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.8, float64(*cfg.Temperature), 1e-6)

	empty := toConfig(flavor.Request{})
	assert.Nil(t, empty.SystemInstruction)
	assert.Nil(t, empty.Temperature)
}
