package change

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which pass produced a change
type Kind int

const (
	// Spelling is a dictionary substitution
	Spelling Kind = iota
	// Grammar is a rule rewrite
	Grammar
)

func (k Kind) String() string {
	switch k {
	case Spelling:
		return "spelling"
	case Grammar:
		return "grammar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind by name
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "spelling":
		*k = Spelling
	case "grammar":
		*k = Grammar
	default:
		return fmt.Errorf("unknown change kind: %s", name)
	}
	return nil
}

// Change is a single edit made while correcting text. Corrected never equals
// Original.
type Change struct {
	Kind      Kind   `json:"kind"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Message   string `json:"message"`
}

// Count returns how many changes of each kind are in changes
func Count(changes []Change) (spelling, grammar int) {
	for _, c := range changes {
		switch c.Kind {
		case Spelling:
			spelling++
		case Grammar:
			grammar++
		}
	}
	return spelling, grammar
}
