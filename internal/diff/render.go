package diff

import (
	"html"
	"strings"
)

// NoChangesHTML is rendered for an identical result
const NoChangesHTML = `<span class="no-changes">No changes</span>`

// Render turns a result into highlighted HTML. Segment text is escaped.
func Render(r Result) string {
	if r.Identical {
		return NoChangesHTML
	}

	var b strings.Builder
	for _, s := range r.Segments {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case Added:
			b.WriteString(`<ins class="added">` + text + `</ins>`)
		case Removed:
			b.WriteString(`<del class="removed">` + text + `</del>`)
		default:
			b.WriteString(`<span class="unchanged">` + text + `</span>`)
		}
	}
	return b.String()
}

// Original rebuilds the original text from a result
func Original(r Result, fallback string) string {
	if r.Identical {
		return fallback
	}
	return join(r.Segments, Removed)
}

// Corrected rebuilds the corrected text from a result
func Corrected(r Result, fallback string) string {
	if r.Identical {
		return fallback
	}
	return join(r.Segments, Added)
}

func join(segments []Segment, keep Kind) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind == Unchanged || s.Kind == keep {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
