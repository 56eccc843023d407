package textutil

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Run("Lossless", func(t *testing.T) {
		inputs := []string{
			"",
			" ",
			"\t\n  ",
			"...!?",
			"hello",
			"Hello, world!",
			"  leading and trailing  ",
			"don't stop-believing 42 times",
			"naïve café’s",
			"bad \xff byte",
		}

		for _, in := range inputs {
			if got := Join(Tokenize(in)); got != in {
				t.Errorf("Join(Tokenize(%q)) = %q", in, got)
			}
		}
	})

	t.Run("Classification", func(t *testing.T) {
		tokens := Tokenize("I can't, 2 cats!")
		want := []Token{
			{Text: "I", Word: true},
			{Text: " ", Word: false},
			{Text: "can't", Word: true},
			{Text: ", ", Word: false},
			{Text: "2", Word: true},
			{Text: " ", Word: false},
			{Text: "cats", Word: true},
			{Text: "!", Word: false},
		}

		if len(tokens) != len(want) {
			t.Fatalf("Expected %d tokens, got %d: %#v", len(want), len(tokens), tokens)
		}
		for i := range want {
			if tokens[i] != want[i] {
				t.Errorf("Token %d: expected %#v, got %#v", i, want[i], tokens[i])
			}
		}
	})

	t.Run("NoWordCharacters", func(t *testing.T) {
		tokens := Tokenize(" -- ")
		if len(tokens) != 1 || tokens[0].Word {
			t.Errorf("Expected a single separator token, got %#v", tokens)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if tokens := Tokenize(""); len(tokens) != 0 {
			t.Errorf("Expected no tokens, got %#v", tokens)
		}
	})
}

func TestSplitWhitespace(t *testing.T) {
	got := SplitWhitespace("the  cat, sat")
	want := []string{"the", "  ", "cat,", " ", "sat"}

	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Part %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if parts := SplitWhitespace(" x"); len(parts) != 2 || parts[0] != " " {
		t.Errorf("Leading whitespace not kept as its own part: %q", parts)
	}
}

func TestPreserveCase(t *testing.T) {
	tests := []struct {
		original   string
		correction string
		want       string
	}{
		{"TEH", "the", "THE"},
		{"Teh", "the", "The"},
		{"teh", "the", "the"},
		{"I", "i", "I"},
		{"tEH", "the", "the"},
		{"DON'T", "don't", "DON'T"},
		{"Recieve", "receive", "Receive"},
	}

	for _, tt := range tests {
		if got := PreserveCase(tt.original, tt.correction); got != tt.want {
			t.Errorf("PreserveCase(%q, %q) = %q, want %q", tt.original, tt.correction, got, tt.want)
		}
	}
}
