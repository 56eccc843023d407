package engine

import (
	"sync"
	"testing"

	"github.com/raaihank/spell-sentinel/internal/change"
	"github.com/raaihank/spell-sentinel/internal/diff"
	"github.com/raaihank/spell-sentinel/internal/spelling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCorrect(t *testing.T) {
	e := New(nil, nil, WithLogger(zap.NewNop()))

	t.Run("NoOp", func(t *testing.T) {
		r := e.Correct("the cat sat", DefaultOptions())

		assert.Equal(t, "the cat sat", r.Corrected)
		assert.NotNil(t, r.Changes)
		assert.Empty(t, r.Changes)
		assert.False(t, r.Changed())
	})

	t.Run("GrammarScenario", func(t *testing.T) {
		r := e.Correct("I has a apple", DefaultOptions())

		assert.Equal(t, "I has a apple", r.SpellCorrected)
		assert.Equal(t, "I have an apple", r.Corrected)
		require.Len(t, r.Changes, 2)
		assert.Equal(t, change.Change{
			Kind:      change.Grammar,
			Original:  "I has",
			Corrected: "I have",
			Message:   `Verb form: use "have" with "I"`,
		}, r.Changes[0])
		assert.Equal(t, "a apple", r.Changes[1].Original)
		assert.Equal(t, "an apple", r.Changes[1].Corrected)
	})

	t.Run("SpellOnlyScenario", func(t *testing.T) {
		r := e.Correct("teh dreamm is over", Options{SpellCheck: true})

		assert.Equal(t, "the dream is over", r.SpellCorrected)
		assert.Equal(t, r.SpellCorrected, r.Corrected)
		require.Len(t, r.Changes, 2)
		for _, c := range r.Changes {
			assert.Equal(t, change.Spelling, c.Kind)
		}
	})

	t.Run("SpellingBeforeGrammar", func(t *testing.T) {
		r := e.Correct("teh dog and I has a egg", DefaultOptions())

		assert.Equal(t, "the dog and I have an egg", r.Corrected)
		require.Len(t, r.Changes, 3)
		assert.Equal(t, change.Spelling, r.Changes[0].Kind)
		assert.Equal(t, change.Grammar, r.Changes[1].Kind)
		assert.Equal(t, change.Grammar, r.Changes[2].Kind)
	})

	t.Run("GrammarSeesSpellingOutput", func(t *testing.T) {
		r := e.Correct("Teh cat have a idea", DefaultOptions())

		assert.Equal(t, "The cat have a idea", r.SpellCorrected)
		assert.Equal(t, "The cat have an idea", r.Corrected)
	})

	t.Run("BothDisabled", func(t *testing.T) {
		r := e.Correct("  teh I has  ", Options{})

		assert.Equal(t, "teh I has", r.Original)
		assert.Equal(t, r.Original, r.SpellCorrected)
		assert.Equal(t, r.Original, r.Corrected)
		assert.Empty(t, r.Changes)
	})

	t.Run("GrammarOnly", func(t *testing.T) {
		r := e.Correct("teh I has", Options{GrammarCheck: true})

		assert.Equal(t, "teh I has", r.SpellCorrected)
		assert.Equal(t, "teh I have", r.Corrected)
	})

	t.Run("EmptyAndBlank", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\n\t"} {
			r := e.Correct(in, DefaultOptions())
			assert.Equal(t, "", r.Original)
			assert.Equal(t, "", r.SpellCorrected)
			assert.Equal(t, "", r.Corrected)
			assert.NotNil(t, r.Changes)
			assert.Empty(t, r.Changes)
		}
	})

	t.Run("TrimsInput", func(t *testing.T) {
		r := e.Correct("\n  teh end \t", DefaultOptions())

		assert.Equal(t, "teh end", r.Original)
		assert.Equal(t, "the end", r.Corrected)
	})

	t.Run("NoNoOpChanges", func(t *testing.T) {
		r := e.Correct("TEH freind have a orange, he are I is", DefaultOptions())
		for _, c := range r.Changes {
			assert.NotEqual(t, c.Original, c.Corrected)
		}
	})
}

func TestDiff(t *testing.T) {
	t.Run("DefaultLockstep", func(t *testing.T) {
		e := Default()
		assert.Equal(t, diff.ModeLockstep, e.DiffMode())

		r := e.Diff("the cat sat", "the dog sat")
		assert.Len(t, r.Segments, 6)
	})

	t.Run("NoChanges", func(t *testing.T) {
		assert.True(t, Default().Diff("same text", "same text").Identical)
	})

	t.Run("LCSMode", func(t *testing.T) {
		e := New(nil, nil, WithDiffMode(diff.ModeLCS))
		r := e.Diff("a lot", "a whole lot")

		assert.Equal(t, diff.Unchanged, r.Segments[len(r.Segments)-1].Kind)
	})

	t.Run("CorrectionRoundTrip", func(t *testing.T) {
		e := Default()
		res := e.Correct("I has a apple", DefaultOptions())
		d := e.Diff(res.Original, res.Corrected)

		assert.Equal(t, res.Corrected, diff.Corrected(d, res.Corrected))
	})
}

func TestCustomDictionary(t *testing.T) {
	e := New(spelling.NewDictionary(map[string]string{"colour": "color"}), nil)

	r := e.Correct("Colour teh", Options{SpellCheck: true})
	assert.Equal(t, "Color the", r.Corrected)
	assert.Equal(t, len(spelling.DefaultEntries)+1, e.DictionarySize())
	assert.Len(t, e.RuleNames(), 6)
}

func TestConcurrentCorrect(t *testing.T) {
	e := Default()
	inputs := []string{"I has a apple", "teh dreamm is over", "the cat sat", "they is an banana"}

	want := make([]Result, len(inputs))
	for i, in := range inputs {
		want[i] = e.Correct(in, DefaultOptions())
	}

	var wg sync.WaitGroup
	for n := 0; n < 32; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			i := n % len(inputs)
			got := e.Correct(inputs[i], DefaultOptions())
			assert.Equal(t, want[i], got)
		}(n)
	}
	wg.Wait()
}

func TestNonASCIIWordsUntouched(t *testing.T) {
	e := New(nil, nil, WithLogger(zap.NewNop()))

	for _, text := range []string{"María ate lunch", "Sofía ordered pizza", "Ma’a apple"} {
		r := e.Correct(text, DefaultOptions())

		assert.Equal(t, text, r.Corrected, text)
		assert.Empty(t, r.Changes, text)
	}
}
