package spelling

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dictionary maps lower case misspellings to their canonical correction.
// It is immutable once built and safe for concurrent reads.
type Dictionary struct {
	entries  map[string]string
	rejected []Rejection
}

// Rejection records an entry left out of a dictionary and why
type Rejection struct {
	Misspelling string `json:"misspelling"`
	Correction  string `json:"correction"`
	Reason      string `json:"reason"`
}

// NewDictionary merges DefaultEntries with the given sources. Later sources
// override earlier ones. Entries that would make correction non-idempotent
// (their correction is itself a misspelling) are dropped and reported by
// Rejected.
func NewDictionary(sources ...map[string]string) *Dictionary {
	merged := make(map[string]string, len(DefaultEntries))
	var rejected []Rejection

	add := func(src map[string]string) {
		for k, v := range src {
			key := normalize(k)
			value := normalize(v)
			switch {
			case key == "" || value == "":
				rejected = append(rejected, Rejection{k, v, "empty misspelling or correction"})
			case key == value:
				rejected = append(rejected, Rejection{k, v, "correction equals misspelling"})
			default:
				merged[key] = value
			}
		}
	}

	add(DefaultEntries)
	for _, src := range sources {
		add(src)
	}

	// Sorted so the rejection order does not depend on map iteration
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make(map[string]string, len(merged))
	for _, k := range keys {
		v := merged[k]
		if isKeyWord(merged, v) {
			rejected = append(rejected, Rejection{k, v, "correction is itself a misspelling"})
			continue
		}
		entries[k] = v
	}

	return &Dictionary{entries: entries, rejected: rejected}
}

// isKeyWord reports whether any word of correction is a dictionary key
func isKeyWord(entries map[string]string, correction string) bool {
	for _, w := range strings.Fields(correction) {
		if _, ok := entries[w]; ok {
			return true
		}
	}
	return false
}

// Lookup returns the correction for a lower case word
func (d *Dictionary) Lookup(word string) (string, bool) {
	c, ok := d.entries[word]
	return c, ok
}

// Len returns the number of entries
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Rejected returns entries that were left out while building the dictionary
func (d *Dictionary) Rejected() []Rejection {
	out := make([]Rejection, len(d.rejected))
	copy(out, d.rejected)
	return out
}

// Entries returns a copy of the table
func (d *Dictionary) Entries() map[string]string {
	out := make(map[string]string, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}

// LoadFile reads a YAML mapping of misspelling to correction
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary file %s: %w", path, err)
	}

	return entries, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
