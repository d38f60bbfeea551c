package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/series"
	"github.com/openclimate-tools/climateview/internal/view"
)

func TestNewSummarizer_DisabledWithoutProvider(t *testing.T) {
	s, err := NewSummarizer(model.LLMConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.False(t, s.IsEnabled())
}

func TestNewSummarizer_RequiresAPIKey(t *testing.T) {
	_, err := NewSummarizer(model.LLMConfig{Provider: "openai"})
	assert.Error(t, err)
}

func TestNewSummarizer_Enabled(t *testing.T) {
	s, err := NewSummarizer(model.LLMConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.True(t, s.IsEnabled())
}

func TestBuildPrompt(t *testing.T) {
	rec := &view.Reconciliation{
		Actor:      "CA",
		Label:      "Canada",
		National:   series.Series{2010: 100, 2011: 98},
		SubTotal:   series.Series{2010: 70, 2011: 72},
		Difference: series.Series{2010: 30, 2011: 26},
	}

	prompt := BuildPrompt(rec)
	assert.Contains(t, prompt, "Canada (CA)")
	assert.Contains(t, prompt, "2010\t100\t70\t30")
	assert.Contains(t, prompt, "2011\t98\t72\t26")
}
