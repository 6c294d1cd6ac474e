package paginate

import (
	"slices"
	"testing"
)

// TestNew covers the graceful page resolution rules: bad input goes to the
// first page, out-of-range numbers go to the last page.
func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		total     int
		perPage   int
		wantNum   int
		wantPages int
	}{
		{name: "missing page", raw: "", total: 25, perPage: 10, wantNum: 1, wantPages: 3},
		{name: "explicit first", raw: "1", total: 25, perPage: 10, wantNum: 1, wantPages: 3},
		{name: "middle page", raw: "2", total: 25, perPage: 10, wantNum: 2, wantPages: 3},
		{name: "last page", raw: "3", total: 25, perPage: 10, wantNum: 3, wantPages: 3},
		{name: "beyond last", raw: "99", total: 25, perPage: 10, wantNum: 3, wantPages: 3},
		{name: "zero", raw: "0", total: 25, perPage: 10, wantNum: 3, wantPages: 3},
		{name: "negative", raw: "-4", total: 25, perPage: 10, wantNum: 3, wantPages: 3},
		{name: "non numeric", raw: "abc", total: 25, perPage: 10, wantNum: 1, wantPages: 3},
		{name: "float", raw: "1.5", total: 25, perPage: 10, wantNum: 1, wantPages: 3},
		{name: "padded", raw: " 2 ", total: 25, perPage: 10, wantNum: 2, wantPages: 3},
		{name: "empty result", raw: "5", total: 0, perPage: 10, wantNum: 1, wantPages: 1},
		{name: "exact multiple", raw: "2", total: 20, perPage: 10, wantNum: 2, wantPages: 2},
		{name: "bad per page", raw: "2", total: 3, perPage: 0, wantNum: 2, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.raw, tt.total, tt.perPage)
			if w.Number != tt.wantNum {
				t.Errorf("Number = %d, want %d", w.Number, tt.wantNum)
			}
			if w.NumPages != tt.wantPages {
				t.Errorf("NumPages = %d, want %d", w.NumPages, tt.wantPages)
			}
		})
	}
}

func TestWindowNavigation(t *testing.T) {
	w := New("2", 25, 10)

	if w.Offset() != 10 {
		t.Errorf("Offset() = %d, want 10", w.Offset())
	}
	if !w.HasPrev() || w.PrevNumber() != 1 {
		t.Errorf("prev: HasPrev=%v PrevNumber=%d", w.HasPrev(), w.PrevNumber())
	}
	if !w.HasNext() || w.NextNumber() != 3 {
		t.Errorf("next: HasNext=%v NextNumber=%d", w.HasNext(), w.NextNumber())
	}

	first := New("", 5, 10)
	if first.HasPrev() || first.HasNext() {
		t.Error("single page should have no neighbours")
	}
	if first.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", first.Offset())
	}
}

func TestWindowPages(t *testing.T) {
	tests := []struct {
		raw   string
		total int
		want  []int
	}{
		{"2", 25, []int{1, 2, 3}},
		{"1", 200, []int{1, 2, 3, 0, 20}},
		{"10", 200, []int{1, 0, 8, 9, 10, 11, 12, 0, 20}},
		{"20", 200, []int{1, 0, 18, 19, 20}},
		{"4", 70, []int{1, 2, 3, 4, 5, 6, 7}},
		{"", 0, []int{1}},
	}
	for _, tt := range tests {
		got := New(tt.raw, tt.total, 10).Pages()
		if !slices.Equal(got, tt.want) {
			t.Errorf("New(%q, %d).Pages() = %v, want %v", tt.raw, tt.total, got, tt.want)
		}
	}
}
