package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-platform/internal/llm"
	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

const matcherRefusal = "None"

const llmMatcherPrompt = `A caller on a clinic phone line was asked a question with a fixed set of valid answers.

Valid answers:
%s

The caller said:
"""%s"""

Which valid answer did the caller mean? Reply with ONLY the exact answer text verbatim, or the word "None" if none of them clearly apply.
Do not explain. Do not add punctuation.`

// LLMMatcher resolves utterances against closed option sets by asking an
// LLM. Any output that is not one of the candidates verbatim, and any
// provider error or timeout, is treated as no-match so the engine falls
// through to local matching.
type LLMMatcher struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewLLMMatcher creates an LLM-backed option matcher. The timeout bounds
// each match attempt independently of the transport deadline; zero means
// the engine default applies via context.
func NewLLMMatcher(client llm.Client, model string, timeout time.Duration, logger *logging.Logger) *LLMMatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMMatcher{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Match implements OptionMatcher. It never returns an error: failures are
// logged and reported as no-match.
func (m *LLMMatcher) Match(ctx context.Context, utterance string, options []string) (string, bool) {
	if m.client == nil || strings.TrimSpace(utterance) == "" || len(options) == 0 {
		return "", false
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	labels := make([]string, len(options))
	for i, option := range options {
		labels[i] = fmt.Sprintf("- %s", option)
	}
	prompt := fmt.Sprintf(llmMatcherPrompt, strings.Join(labels, "\n"), utterance)

	resp, err := m.client.Complete(ctx, llm.Request{
		Model:       m.model,
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: prompt}},
		MaxTokens:   20,
		Temperature: 0,
	})
	if err != nil {
		m.logger.Debug("llm matcher unavailable, falling back to local matching", "error", err)
		return "", false
	}

	answer := strings.TrimSpace(resp.Text)
	if answer == "" || strings.EqualFold(answer, matcherRefusal) {
		return "", false
	}
	for _, option := range options {
		if answer == option {
			return option, true
		}
	}
	m.logger.Debug("llm matcher output did not match any candidate", "answer", answer)
	return "", false
}

var _ OptionMatcher = (*LLMMatcher)(nil)
