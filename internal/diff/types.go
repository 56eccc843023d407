package diff

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a diff segment
type Kind int

const (
	// Unchanged text is present in both versions
	Unchanged Kind = iota
	// Added text is only in the corrected version
	Added
	// Removed text is only in the original version
	Removed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind by name
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Segment is one token of a diff
type Segment struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Result is a classified segment list. Identical is the "no changes"
// indicator: it is set, with no segments, only when both inputs are equal.
type Result struct {
	Identical bool      `json:"identical"`
	Segments  []Segment `json:"segments,omitempty"`
}

// Mode selects the alignment strategy
type Mode string

const (
	// ModeLockstep walks both token lists in step
	ModeLockstep Mode = "lockstep"
	// ModeLCS aligns on the longest matching blocks
	ModeLCS Mode = "lcs"
)

// ParseMode maps a configuration value to a Mode. Empty selects lock-step.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLockstep:
		return ModeLockstep, nil
	case ModeLCS:
		return ModeLCS, nil
	default:
		return ModeLockstep, fmt.Errorf("unknown diff mode: %s (must be lockstep or lcs)", s)
	}
}
