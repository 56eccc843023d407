package diff

import (
	"github.com/pmezard/go-difflib/difflib"
	"github.com/raaihank/spell-sentinel/internal/textutil"
)

// Compute diffs original against corrected at word/whitespace granularity
func Compute(original, corrected string, mode Mode) Result {
	if original == corrected {
		return Result{Identical: true}
	}

	a := textutil.SplitWhitespace(original)
	b := textutil.SplitWhitespace(corrected)

	if mode == ModeLCS {
		return Result{Segments: lcs(a, b)}
	}
	return Result{Segments: lockstep(a, b)}
}

// Lockstep is Compute with ModeLockstep
func Lockstep(original, corrected string) Result {
	return Compute(original, corrected, ModeLockstep)
}

// LCS is Compute with ModeLCS
func LCS(original, corrected string) Result {
	return Compute(original, corrected, ModeLCS)
}

// lockstep pairs tokens by position. A mismatch is a removed/added pair, so
// an insertion shifts every following token out of alignment.
func lockstep(a, b []string) []Segment {
	segments := make([]Segment, 0, len(a)+len(b))
	i, j := 0, 0

	for i < len(a) || j < len(b) {
		switch {
		case i >= len(a):
			segments = append(segments, Segment{Kind: Added, Text: b[j]})
			j++
		case j >= len(b):
			segments = append(segments, Segment{Kind: Removed, Text: a[i]})
			i++
		case a[i] == b[j]:
			segments = append(segments, Segment{Kind: Unchanged, Text: a[i]})
			i++
			j++
		default:
			segments = append(segments,
				Segment{Kind: Removed, Text: a[i]},
				Segment{Kind: Added, Text: b[j]},
			)
			i++
			j++
		}
	}

	return segments
}

// lcs aligns on matching blocks. Automatic junk detection is off because
// whitespace tokens repeat often enough to trigger it on long inputs.
func lcs(a, b []string) []Segment {
	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)
	segments := make([]Segment, 0, len(a)+len(b))

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, t := range a[op.I1:op.I2] {
				segments = append(segments, Segment{Kind: Unchanged, Text: t})
			}
		case 'd':
			for _, t := range a[op.I1:op.I2] {
				segments = append(segments, Segment{Kind: Removed, Text: t})
			}
		case 'i':
			for _, t := range b[op.J1:op.J2] {
				segments = append(segments, Segment{Kind: Added, Text: t})
			}
		case 'r':
			for _, t := range a[op.I1:op.I2] {
				segments = append(segments, Segment{Kind: Removed, Text: t})
			}
			for _, t := range b[op.J1:op.J2] {
				segments = append(segments, Segment{Kind: Added, Text: t})
			}
		}
	}

	return segments
}
