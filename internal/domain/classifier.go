package domain

import (
	"strings"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Classifier maps a file path and function name to a wrap category. The
// zero value uses no keywords and no AI segment, so everything that is not
// bulk or create falls through to default.
type Classifier struct {
	Keywords  []string
	AISegment string
}

// NewClassifier builds a Classifier with lower-cased keywords.
func NewClassifier(keywords []string, aiSegment string) Classifier {
	lowered := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	return Classifier{Keywords: lowered, AISegment: strings.Trim(aiSegment, "/")}
}

// Classify applies the rules in order, first match wins:
// ai (path segment or name keyword), bulk, create, default.
func (c Classifier) Classify(path m.Path, name string) m.WrapCategory {
	lower := strings.ToLower(name)

	if c.inAISegment(path) {
		return m.CategoryAI
	}

	for _, kw := range c.Keywords {
		if strings.Contains(lower, kw) {
			return m.CategoryAI
		}
	}

	if strings.Contains(lower, "bulk") {
		return m.CategoryBulk
	}

	if strings.HasPrefix(name, "create") {
		return m.CategoryCreate
	}

	return m.CategoryDefault
}

// inAISegment matches "<segment>/" anywhere in the slash separated path, so
// both src/actions/ai/x.ts and src/actions/openai/x.ts qualify.
func (c Classifier) inAISegment(path m.Path) bool {
	if c.AISegment == "" {
		return false
	}

	p := strings.ReplaceAll(string(path), "\\", "/")

	return strings.Contains(p, c.AISegment+"/")
}
