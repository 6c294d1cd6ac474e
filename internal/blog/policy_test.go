package blog

import (
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

func TestCanModify(t *testing.T) {
	author := uuid.New()
	post := &models.Post{AuthorID: author}
	comment := &models.Comment{AuthorID: author}

	tests := []struct {
		name   string
		caller *Caller
		entity Owned
		want   bool
	}{
		{"anonymous", nil, post, false},
		{"owner", &Caller{ID: author}, post, true},
		{"other user", &Caller{ID: uuid.New()}, post, false},
		{"staff non-owner", &Caller{ID: uuid.New(), IsStaff: true}, post, false},
		{"nil id", &Caller{}, &models.Post{}, false},
		{"comment owner", &Caller{ID: author}, comment, true},
		{"no entity", &Caller{ID: author}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModify(tt.caller, tt.entity); got != tt.want {
				t.Errorf("CanModify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConflictError(t *testing.T) {
	err := error(&ConflictError{Field: "slug"})
	field, ok := conflictField(err)
	if !ok || field != "slug" {
		t.Errorf("conflictField() = %q, %v", field, ok)
	}
	if _, ok := conflictField(ErrNotFound); ok {
		t.Error("ErrNotFound is not a conflict")
	}
	if err.Error() != "conflict: duplicate slug" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	v := ValidationErrors{}
	if v.Err() != nil {
		t.Fatal("empty errors should be nil")
	}
	v.Add("title", "first")
	v.Add("title", "second")
	v.Add("content", "missing")
	if v["title"] != "first" {
		t.Errorf("first message should win, got %q", v["title"])
	}
	want := "validation failed: content: missing; title: first"
	if v.Error() != want {
		t.Errorf("Error() = %q, want %q", v.Error(), want)
	}
	got, ok := AsValidation(v.Err())
	if !ok || !got.Has("content") {
		t.Error("AsValidation should unwrap")
	}
}
