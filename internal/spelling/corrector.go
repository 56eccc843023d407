package spelling

import (
	"fmt"
	"strings"

	"github.com/raaihank/spell-sentinel/internal/change"
	"github.com/raaihank/spell-sentinel/internal/textutil"
	"go.uber.org/zap"
)

// Corrector substitutes known misspellings using a fixed dictionary
type Corrector struct {
	dict   *Dictionary
	logger *zap.Logger
}

// NewCorrector creates a spelling corrector backed by dict
func NewCorrector(dict *Dictionary, logger *zap.Logger) *Corrector {
	if dict == nil {
		dict = NewDictionary()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Corrector{dict: dict, logger: logger}
}

// Dictionary returns the table the corrector reads from
func (c *Corrector) Dictionary() *Dictionary {
	return c.dict
}

// Correct replaces every dictionary hit in text, keeping the casing of the
// original word and all separators untouched. Changes are returned left to
// right.
func (c *Corrector) Correct(text string) (string, []change.Change) {
	changes := make([]change.Change, 0)
	if text == "" {
		return "", changes
	}

	tokens := textutil.Tokenize(text)
	for i, tok := range tokens {
		if !tok.Word {
			continue
		}

		canonical, ok := c.dict.Lookup(strings.ToLower(tok.Text))
		if !ok {
			continue
		}

		replacement := textutil.PreserveCase(tok.Text, canonical)
		if replacement == tok.Text {
			continue
		}

		changes = append(changes, change.Change{
			Kind:      change.Spelling,
			Original:  tok.Text,
			Corrected: replacement,
			Message:   fmt.Sprintf("Spelling: %q → %q", tok.Text, replacement),
		})
		tokens[i].Text = replacement
	}

	if len(changes) > 0 {
		c.logger.Debug("Spelling corrections applied", zap.Int("count", len(changes)))
	}

	return textutil.Join(tokens), changes
}
