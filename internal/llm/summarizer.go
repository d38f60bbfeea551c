// Package llm generates an optional narrative summary of a
// reconciliation report through an OpenAI-compatible API. Summaries are
// presentation only and never feed back into the computed series.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/view"
)

const (
	defaultModel     = openai.GPT4oMini
	defaultMaxTokens = 600
	requestTimeout   = 30 * time.Second
)

// Summarizer wraps the chat-completion client. A nil Summarizer is
// valid and disabled.
type Summarizer struct {
	client *openai.Client
	model  string
}

// NewSummarizer creates a summarizer from configuration. Returns an
// error when the provider is set but no API key is available.
func NewSummarizer(cfg model.LLMConfig) (*Summarizer, error) {
	if cfg.Provider == "" {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm provider %q configured without an API key", cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = defaultModel
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  m,
	}, nil
}

// IsEnabled reports whether summaries will be generated
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.client != nil
}

// Summarize produces a short narrative of the reconciliation report
func (s *Summarizer) Summarize(ctx context.Context, rec *view.Reconciliation) (string, error) {
	if !s.IsEnabled() {
		return "", fmt.Errorf("summarizer is disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You summarize greenhouse-gas reconciliation tables. " +
					"Describe only the numbers provided; do not speculate about causes.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(rec),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt flattens the reconciliation into a year-by-year table
func BuildPrompt(rec *view.Reconciliation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation of national vs summed subnational emissions for %s (%s).\n", rec.Label, rec.Actor)
	fmt.Fprintf(&b, "Values in tonnes CO2e.\n\n")
	fmt.Fprintf(&b, "year\tnational\tsubnational_sum\tdifference\n")
	for _, year := range rec.Difference.Years() {
		fmt.Fprintf(&b, "%d\t%.0f\t%.0f\t%.0f\n", year, rec.National[year], rec.SubTotal[year], rec.Difference[year])
	}
	b.WriteString("\nSummarize the size and trend of the difference in two short paragraphs.")
	return b.String()
}
