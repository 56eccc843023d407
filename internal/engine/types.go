package engine

import "github.com/raaihank/spell-sentinel/internal/change"

// Options selects which passes run for one call
type Options struct {
	SpellCheck   bool `json:"spell_check" mapstructure:"spell_check" yaml:"spell_check"`
	GrammarCheck bool `json:"grammar_check" mapstructure:"grammar_check" yaml:"grammar_check"`
}

// DefaultOptions enables both passes
func DefaultOptions() Options {
	return Options{SpellCheck: true, GrammarCheck: true}
}

// Result is the outcome of one correction. Original is the trimmed input;
// SpellCorrected is the text after the spelling pass and Corrected after the
// grammar pass. Skipped passes leave their input unchanged.
type Result struct {
	Original       string          `json:"original"`
	SpellCorrected string          `json:"spell_version"`
	Corrected      string          `json:"corrected"`
	Changes        []change.Change `json:"changes"`
}

// Changed reports whether any pass modified the text
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}
