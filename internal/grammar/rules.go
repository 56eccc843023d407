package grammar

import "regexp"

// Rule is a single grammar rewrite. Template may reference Pattern's capture
// groups using regexp.Expand syntax. A match only counts when it starts and
// ends on a word boundary in the tokenizer's sense, so patterns that end inside
// a word must consume the rest of it.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
	Message  string
}

// defaultRules is built once at package init and never modified. Order
// matters: each rule sees the output of the previous one.
var defaultRules = []Rule{
	{
		Name:     "subject_verb_are",
		Pattern:  regexp.MustCompile(`(?i)\b(I|he|she|it)(\s+)are\b`),
		Template: "${1}${2}am/is",
		Message:  `Subject-verb agreement: use "am" or "is" with this pronoun`,
	},
	{
		Name:     "subject_verb_is",
		Pattern:  regexp.MustCompile(`(?i)\b(I|you|we|they)(\s+)is\b`),
		Template: "${1}${2}are",
		Message:  `Subject-verb agreement: use "are" with this pronoun`,
	},
	{
		Name:     "i_has",
		Pattern:  regexp.MustCompile(`(?i)\b(I)(\s+)has\b`),
		Template: "${1}${2}have",
		Message:  `Verb form: use "have" with "I"`,
	},
	{
		Name:     "third_person_have",
		Pattern:  regexp.MustCompile(`(?i)\b(he|she|it)(\s+)have\b`),
		Template: "${1}${2}has",
		Message:  `Verb form: use "has" with he, she or it`,
	},
	{
		Name:     "article_a_vowel",
		Pattern:  regexp.MustCompile(`(?i)\b(a)(\s+)([aeiou][\p{L}\p{N}'’]*)`),
		Template: "${1}n${2}${3}",
		Message:  `Article: use "an" before a word starting with a vowel`,
	},
	{
		Name:     "article_an_consonant",
		Pattern:  regexp.MustCompile(`(?i)\b(a)n(\s+)([b-df-hj-np-tv-z][\p{L}\p{N}'’]*)`),
		Template: "${1}${2}${3}",
		Message:  `Article: use "a" before a word starting with a consonant`,
	},
}

// DefaultRules returns a copy of the built-in rule table in priority order
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// RuleNames returns the names of the built-in rules in priority order
func RuleNames() []string {
	names := make([]string, len(defaultRules))
	for i, r := range defaultRules {
		names[i] = r.Name
	}
	return names
}
