package engine

import (
	"strings"

	"github.com/raaihank/spell-sentinel/internal/change"
	"github.com/raaihank/spell-sentinel/internal/diff"
	"github.com/raaihank/spell-sentinel/internal/grammar"
	"github.com/raaihank/spell-sentinel/internal/spelling"
	"go.uber.org/zap"
)

// Engine sequences spelling correction, grammar correction and diffing. It
// holds only read-only tables, so one Engine may serve any number of
// concurrent calls.
type Engine struct {
	speller  *spelling.Corrector
	grammar  *grammar.Corrector
	diffMode diff.Mode
	logger   *zap.Logger
}

// Option customizes an Engine
type Option func(*Engine)

// WithDiffMode selects the alignment used by Diff
func WithDiffMode(mode diff.Mode) Option {
	return func(e *Engine) {
		e.diffMode = mode
	}
}

// WithLogger sets the logger handed to the correctors
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine from a dictionary and rule table. Nil values select
// the built-ins.
func New(dict *spelling.Dictionary, rules []grammar.Rule, opts ...Option) *Engine {
	e := &Engine{
		diffMode: diff.ModeLockstep,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.speller = spelling.NewCorrector(dict, e.logger.Named("spelling"))
	e.grammar = grammar.NewCorrector(rules, e.logger.Named("grammar"))

	return e
}

// Default creates an engine with the built-in dictionary and rules
func Default() *Engine {
	return New(nil, nil)
}

// Correct trims text and runs the enabled passes over it. Empty input yields
// an empty result; Correct never fails.
func (e *Engine) Correct(text string, opts Options) Result {
	original := strings.TrimSpace(text)
	if original == "" {
		return Result{Changes: []change.Change{}}
	}

	changes := make([]change.Change, 0)

	spellCorrected := original
	if opts.SpellCheck {
		var spellChanges []change.Change
		spellCorrected, spellChanges = e.speller.Correct(original)
		changes = append(changes, spellChanges...)
	}

	corrected := spellCorrected
	if opts.GrammarCheck {
		var grammarChanges []change.Change
		corrected, grammarChanges = e.grammar.Correct(spellCorrected)
		changes = append(changes, grammarChanges...)
	}

	return Result{
		Original:       original,
		SpellCorrected: spellCorrected,
		Corrected:      corrected,
		Changes:        changes,
	}
}

// Diff compares original and corrected with the engine's diff mode
func (e *Engine) Diff(original, corrected string) diff.Result {
	return diff.Compute(original, corrected, e.diffMode)
}

// DiffMode returns the configured diff mode
func (e *Engine) DiffMode() diff.Mode {
	return e.diffMode
}

// DictionarySize returns the number of dictionary entries
func (e *Engine) DictionarySize() int {
	return e.speller.Dictionary().Len()
}

// RuleNames returns the grammar rules in priority order
func (e *Engine) RuleNames() []string {
	rules := e.grammar.Rules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}
