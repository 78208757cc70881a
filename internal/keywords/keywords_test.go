package keywords

import (
	"slices"
	"testing"
)

func TestGenerate(t *testing.T) {
	got := Generate("Phone Case", "Slim phone case, fits most phones. Red or blue.")
	want := []string{"phone", "case", "slim", "fits", "most", "phones", "red", "blue"}
	if !slices.Equal(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateStripsMarkup(t *testing.T) {
	got := Generate("Mug", "<p>Ceramic <b>mug</b></p><script>track()</script>")
	want := []string{"mug", "ceramic"}
	if !slices.Equal(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"no markup here", "no markup here"},
		{"Fish &amp; Chips", "Fish & Chips"},
		{"<ul><li>one</li><li>two</li></ul>", "one  two"},
		{"<style>p{}</style>kept", "kept"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
