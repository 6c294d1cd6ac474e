// Package paginate resolves page-number query parameters against a result
// count. Bad input never fails: a non-numeric page falls back to the first
// page and an out-of-range number falls back to the last one.
package paginate

import (
	"strconv"
	"strings"
)

// Window describes one page of a larger result set.
type Window struct {
	Number   int // 1-based page number, always valid
	PerPage  int
	Total    int // total number of items across all pages
	NumPages int // at least 1, even for an empty result
}

// Page is a window plus the items it holds.
type Page[T any] struct {
	Window
	Items []T
}

// New resolves the raw page parameter for a result set of total items.
// perPage values below 1 are treated as 1.
func New(raw string, total, perPage int) Window {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Window{Number: number, PerPage: perPage, Total: total, NumPages: numPages}
}

// Offset is the number of items preceding this page.
func (w Window) Offset() int {
	return (w.Number - 1) * w.PerPage
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool { return w.Number > 1 }

// HasNext reports whether a following page exists.
func (w Window) HasNext() bool { return w.Number < w.NumPages }

// PrevNumber returns the previous page number.
func (w Window) PrevNumber() int { return w.Number - 1 }

// NextNumber returns the next page number.
func (w Window) NextNumber() int { return w.Number + 1 }

// Pages lists the page numbers worth linking: the first and last pages
// and up to two either side of the current one. A zero marks a gap.
func (w Window) Pages() []int {
	var pages []int
	for n := 1; n <= w.NumPages; n++ {
		switch {
		case n == 1 || n == w.NumPages || (n >= w.Number-2 && n <= w.Number+2):
			pages = append(pages, n)
		case pages[len(pages)-1] != 0:
			pages = append(pages, 0)
		}
	}
	return pages
}
