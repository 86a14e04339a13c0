package workflow

import (
	"log/slog"
	"strings"

	"github.com/drewby/chackgpt/pkg/llm"
)

// Phrases the manager looks for in the conversation, case-insensitively.
const (
	KeywordAspire     = "aspire"
	KeywordFutureOfAI = "future of AI"
)

// KeywordManager decides when a group chat ends. The first agent always
// speaks. After that the chat continues only while someone has mentioned
// Aspire and the shared iteration budget is not spent.
//
// A manager is single use: create one per run.
type KeywordManager struct {
	budget *IterationBudget
	calls  int
	log    *slog.Logger
}

func NewKeywordManager(budget *IterationBudget, log *slog.Logger) *KeywordManager {
	return &KeywordManager{budget: budget, log: log}
}

// ShouldTerminate is consulted before every turn with the full history.
func (m *KeywordManager) ShouldTerminate(history []llm.Message) bool {
	m.calls++
	if m.calls == 1 {
		return false
	}

	if m.calls >= m.budget.Max() {
		m.log.Info("iteration budget spent", slog.Int("turns", m.calls-1), slog.Int("max", m.budget.Max()))
		m.budget.Set(ReducedMaxIterations)
		return true
	}

	if mentions(history, KeywordFutureOfAI) {
		m.budget.Set(DefaultMaxIterations)
	}

	return !mentions(history, KeywordAspire)
}

// mentions reports whether any user or assistant text contains phrase.
// Tool results are not conversation text and are ignored.
func mentions(history []llm.Message, phrase string) bool {
	phrase = strings.ToLower(phrase)
	for _, msg := range history {
		if msg.Role == llm.RoleSystem || msg.Role == llm.RoleTool {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), phrase) {
			return true
		}
	}
	return false
}
