package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
)

func TestNewProviderRejectsUnknownProvider(t *testing.T) {
	cfg := common.NewDefaultConfig()

	_, err := NewProvider(cfg, "openai", "", arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestNewGeminiServiceRequiresAPIKey(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Gemini.APIKey = ""

	_, err := NewGeminiService(&cfg.Gemini, "", 2, arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewGeminiServiceRejectsBadTimeout(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.Timeout = "soon"

	_, err := NewGeminiService(&cfg.Gemini, "", 2, arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestNewClaudeServiceRequiresAPIKey(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Anthropic.APIKey = ""
	cfg.Anthropic.VertexCredsPath = ""

	_, err := NewClaudeService(&cfg.Anthropic, "", arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewClaudeServiceRejectsBadTimeout(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Anthropic.APIKey = "test-key"
	cfg.Anthropic.Timeout = "never"

	_, err := NewClaudeService(&cfg.Anthropic, "", arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestNewClaudeServiceVertexRequiresProject(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	cfg := common.NewDefaultConfig()
	cfg.Anthropic.VertexCredsPath = "/tmp/creds.json"
	cfg.Anthropic.VertexProject = ""

	_, err := NewClaudeService(&cfg.Anthropic, "", arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex_project")
}
