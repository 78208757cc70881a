// Package keywords derives the lowercase search tokens stored on a product.
package keywords

import (
	"strings"

	"golang.org/x/net/html"
)

// minLen drops short words such as "a" and "of".
const minLen = 3

// Generate returns the unique lowercase words of name and description in
// first-seen order. Markup in the description is reduced to its text.
func Generate(name, description string) []string {
	text := strings.ToLower(name + " " + PlainText(description))
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.FieldsFunc(text, isSeparator) {
		if len([]rune(w)) < minLen {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// PlainText returns the text content of an HTML fragment. Plain input comes
// back unchanged apart from entity decoding.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ',', '.', '!', '?', ';', ':', '(', ')', '"':
		return true
	}
	return false
}
