// Package slug derives the public store address from a store name. A slug
// is assigned once at registration and stored; it is never recomputed from
// a later store name.
package slug

import (
	"context"
	"fmt"
	"strings"
)

const fallback = "store"

// maxAttempts bounds the numeric suffixes tried by Unique.
const maxAttempts = 1000

// Make lowercases name and collapses every run of characters outside
// [a-z0-9] into a single dash, trimming dashes at either end.
func Make(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return fallback
	}
	return s
}

// Lower is the case-folded store name used for uniqueness checks.
func Lower(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Unique returns base, or base-2, base-3, ... for the first candidate taken
// reports as free.
func Unique(ctx context.Context, base string, taken func(context.Context, string) (bool, error)) (string, error) {
	candidate := base
	for n := 2; n <= maxAttempts+1; n++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
