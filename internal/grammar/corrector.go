package grammar

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/raaihank/spell-sentinel/internal/change"
	"github.com/raaihank/spell-sentinel/internal/textutil"
	"go.uber.org/zap"
)

// Corrector applies an ordered rule table to text
type Corrector struct {
	rules  []Rule
	logger *zap.Logger
}

// NewCorrector creates a grammar corrector. A nil rule slice selects the
// built-in rules.
func NewCorrector(rules []Rule, logger *zap.Logger) *Corrector {
	if rules == nil {
		rules = DefaultRules()
	} else {
		rules = append([]Rule(nil), rules...)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("Grammar corrector initialized", zap.Int("total_rules", len(rules)))

	return &Corrector{rules: rules, logger: logger}
}

// Rules returns a copy of the rule table in priority order
func (c *Corrector) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Correct runs every rule in order over a working copy of text. Each rule
// matches against the output of the rules before it; its changes are
// recorded from the working copy as it was before the rule rewrote it.
func (c *Corrector) Correct(text string) (string, []change.Change) {
	changes := make([]change.Change, 0)
	if text == "" {
		return "", changes
	}

	working := text
	for _, rule := range c.rules {
		matches := findWholeWords(rule.Pattern, working)
		if len(matches) == 0 {
			continue
		}

		var b strings.Builder
		last := 0
		applied := 0
		for _, m := range matches {
			original := working[m[0]:m[1]]
			corrected := string(rule.Pattern.ExpandString(nil, rule.Template, working, m))

			b.WriteString(working[last:m[0]])
			b.WriteString(corrected)
			last = m[1]

			if corrected == original {
				continue
			}
			applied++
			changes = append(changes, change.Change{
				Kind:      change.Grammar,
				Original:  original,
				Corrected: corrected,
				Message:   rule.Message,
			})
		}
		b.WriteString(working[last:])
		working = b.String()

		if applied > 0 {
			c.logger.Debug("Grammar rule applied",
				zap.String("rule", rule.Name),
				zap.Int("count", applied),
			)
		}
	}

	return working, changes
}

// findWholeWords returns the non-overlapping matches of re in s that neither
// start nor end inside a word. RE2's \b only knows ASCII word characters, so
// "María ate" would otherwise match "a ate". A rejected match resumes the
// search one rune later so a real match it overlapped is still found.
func findWholeWords(re *regexp.Regexp, s string) [][]int {
	var matches [][]int
	pos := 0
	for pos <= len(s) {
		m := re.FindStringSubmatchIndex(s[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}

		if m[1] > m[0] && onWordBoundary(s, m[0], m[1]) {
			matches = append(matches, m)
			pos = m[1]
			continue
		}

		_, size := utf8.DecodeRuneInString(s[m[0]:])
		if size == 0 {
			break
		}
		pos = m[0] + size
	}
	return matches
}

// onWordBoundary reports whether s[start:end] is not glued to a word
// character on either side
func onWordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); textutil.IsWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); textutil.IsWordRune(r) {
			return false
		}
	}
	return true
}
