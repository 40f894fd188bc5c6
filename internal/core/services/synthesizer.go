package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// QuerySynthesizer turns a question and a refined schema into SQL.
type QuerySynthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewQuerySynthesizer creates a synthesizer. prompts may be nil.
func NewQuerySynthesizer(llm driven.LLMService, prompts driven.PromptStore) *QuerySynthesizer {
	return &QuerySynthesizer{llm: llm, prompts: prompts}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *QuerySynthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize asks the model for SQL answering question over refined and
// returns it sanitized. The result is untrusted text.
//
// On a model failure the returned string is a readable error message and the
// error is a *domain.ProviderError.
func (s *QuerySynthesizer) Synthesize(
	ctx context.Context, question string, refined domain.RefinedSchema,
) (string, error) {
	if s.llm == nil {
		perr := domain.NewProviderError("synthesize", domain.ErrLLMUnavailable)
		return synthesisFailure(perr), perr
	}

	system := loadPrompt(s.prompts, driven.PromptSQLGeneration)
	user := fmt.Sprintf("Database schema:\n%s\nUser question: %s\n\nSQL query:", RenderSchema(refined), question)
	logger.Debug("SQL prompt:\n%s", user)

	reply, err := s.llm.Complete(ctx, system, user, driven.GenerateOptions{
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		perr := domain.NewProviderError("synthesize", err)
		return synthesisFailure(perr), perr
	}
	return SanitizeSQL(reply), nil
}

func synthesisFailure(err error) string {
	return fmt.Sprintf("An error occurred while generating the SQL query: %v", err)
}

// RenderSchema renders a refined schema as one block per table, in table name order.
func RenderSchema(refined domain.RefinedSchema) string {
	var b strings.Builder
	for _, name := range refined.Tables() {
		fmt.Fprintf(&b, "Table: %s\n- Columns: %s\n\n", name, strings.Join(refined[name], ", "))
	}
	return b.String()
}

const fence = "```"

// SanitizeSQL strips surrounding whitespace, a leading or trailing
// triple-backtick fence and a leading "sql" language tag. Only the three fence
// characters are removed, so backtick-quoted identifiers next to a fence survive. Applying it to its
// own output returns the same text.
func SanitizeSQL(raw string) string {
	s := raw
	for {
		prev := s
		s = strings.TrimSpace(s)
		s = strings.TrimSpace(strings.TrimPrefix(s, fence))
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
		s = stripLanguageTag(s)
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

// stripLanguageTag removes a leading case-insensitive "sql" token.
func stripLanguageTag(s string) string {
	if len(s) < 3 || !strings.EqualFold(s[:3], "sql") {
		return s
	}
	if len(s) == 3 {
		return ""
	}
	if r := rune(s[3]); unicode.IsSpace(r) {
		return s[3:]
	}
	return s
}
