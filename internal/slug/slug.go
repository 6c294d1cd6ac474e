// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed matches anything that isn't a word character, whitespace or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of whitespace and hyphens into one hyphen.
	separators = regexp.MustCompile(`[-\s]+`)
)

// Generate creates a URL-friendly slug from the given string. Accented
// letters are folded to their ASCII base before filtering.
// Example: "Café, Crème & 2026!" → "cafe-creme-2026"
func Generate(s string) string {
	// Transformer chains carry state, so build one per call.
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	result := strings.ToLower(folded)
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(strings.TrimSpace(result), "-")
	return strings.Trim(result, "-_")
}

// WithSuffix returns the n-th candidate for a slug that must be unique:
// the base itself for n <= 1, otherwise "base-n". The base is shortened so
// the candidate never exceeds maxLen (maxLen <= 0 disables the limit).
func WithSuffix(base string, n, maxLen int) string {
	suffix := ""
	if n > 1 {
		suffix = "-" + strconv.Itoa(n)
	}
	if maxLen > 0 && len(base)+len(suffix) > maxLen {
		cut := maxLen - len(suffix)
		if cut < 0 {
			cut = 0
		}
		base = strings.TrimRight(base[:cut], "-")
	}
	return base + suffix
}
