package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// IntentClassifier routes a question to one of the handling paths.
// It holds no state across calls.
type IntentClassifier struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewIntentClassifier creates a classifier. prompts may be nil.
func NewIntentClassifier(llm driven.LLMService, prompts driven.PromptStore) *IntentClassifier {
	return &IntentClassifier{llm: llm, prompts: prompts}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *IntentClassifier) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Classify asks the model for the question's intent. Any model error,
// unparseable reply or unknown value yields domain.IntentUnknown.
func (c *IntentClassifier) Classify(ctx context.Context, question string) domain.Intent {
	if c.llm == nil {
		logger.Warn("Intent classification skipped: %v", domain.ErrLLMUnavailable)
		return domain.IntentUnknown
	}

	system := loadPrompt(c.prompts, driven.PromptIntentClassify)
	user := fmt.Sprintf("Analyze the following user question: %q", question)

	reply, err := c.llm.Complete(ctx, system, user, driven.GenerateOptions{
		MaxTokens: 64,
		JSON:      true,
	})
	if err != nil {
		logger.Warn("Intent classification failed: %v", err)
		return domain.IntentUnknown
	}

	intent, err := ParseIntentReply(reply)
	if err != nil {
		logger.Warn("Intent classification reply unusable: %v", err)
		return domain.IntentUnknown
	}
	logger.Debug("Classified intent: %s", intent)
	return intent
}

// ParseIntentReply extracts {"intent": "..."} from a model reply. The JSON
// object may be surrounded by prose or a code fence.
func ParseIntentReply(reply string) (domain.Intent, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return domain.IntentUnknown, fmt.Errorf("no JSON object in reply %q: %w", reply, domain.ErrInvalidInput)
	}

	var payload struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &payload); err != nil {
		return domain.IntentUnknown, fmt.Errorf("decode intent: %w", err)
	}
	return domain.ParseIntent(payload.Intent), nil
}
