package models

import (
	"testing"

	"github.com/google/uuid"
)

// TestLabels verifies the human-readable labels used in admin listings and logs.
func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "category", got: (&Category{Name: "Python"}).String(), want: "Python"},
		{name: "tag", got: (&Tag{Name: "Tutorial"}).String(), want: "Tutorial"},
		{name: "post", got: (&Post{Title: "Hello World"}).String(), want: "Hello World"},
		{name: "user", got: (&User{Username: "blogger"}).String(), want: "blogger"},
		{
			name: "comment",
			got:  (&Comment{AuthorName: "commenter", PostTitle: "Post to Comment"}).String(),
			want: "commenter on Post to Comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("String() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	if got := (&Post{Slug: "url-test"}).URL(); got != "/post/url-test/" {
		t.Errorf("Post.URL() = %q", got)
	}
	if got := (&Category{Slug: "technology"}).URL(); got != "/category/technology/" {
		t.Errorf("Category.URL() = %q", got)
	}
	if got := (&Tag{Slug: "go"}).URL(); got != "/tag/go/" {
		t.Errorf("Tag.URL() = %q", got)
	}
}

// TestPostStatus verifies status validity and publication checks.
func TestPostStatus(t *testing.T) {
	tests := []struct {
		status    PostStatus
		valid     bool
		published bool
	}{
		{status: PostStatusPublished, valid: true, published: true},
		{status: PostStatusDraft, valid: true, published: false},
		{status: PostStatus(""), valid: false, published: false},
		{status: PostStatus("archived"), valid: false, published: false},
		{status: PostStatus("PUBLISHED"), valid: false, published: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			p := &Post{Status: tt.status}
			if got := p.IsPublished(); got != tt.published {
				t.Errorf("IsPublished() = %v, want %v", got, tt.published)
			}
		})
	}
}

func TestPostHasImage(t *testing.T) {
	empty := ""
	key := "posts/2026/10/a.jpg"

	if (&Post{}).HasImage() {
		t.Error("nil image reported as present")
	}
	if (&Post{FeaturedImage: &empty}).HasImage() {
		t.Error("empty image key reported as present")
	}
	if !(&Post{FeaturedImage: &key}).HasImage() {
		t.Error("image key not reported")
	}
}

func TestPostTagIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := &Post{Tags: []Tag{{ID: a}, {ID: b}}}
	ids := p.TagIDs()
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("TagIDs() = %v", ids)
	}
}

// TestUserPasswordRoundTrip verifies hashing and verification.
func TestUserPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("testpass123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{PasswordHash: hash}
	if !u.CheckPassword("testpass123") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestUserNeeds2FASetup(t *testing.T) {
	tests := []struct {
		name    string
		staff   bool
		enabled bool
		want    bool
	}{
		{name: "author never needs 2fa", staff: false, enabled: false, want: false},
		{name: "staff without 2fa", staff: true, enabled: false, want: true},
		{name: "staff with 2fa", staff: true, enabled: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{IsStaff: tt.staff, TOTPEnabled: tt.enabled}
			if got := u.Needs2FASetup(); got != tt.want {
				t.Errorf("Needs2FASetup() = %v, want %v", got, tt.want)
			}
		})
	}
}
