package blog

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// Field limits, mirrored by the column sizes in the schema.
const (
	MaxTitleLen           = 200
	MaxSlugLen            = 200
	MaxContentLen         = 100_000
	MaxMetaTitleLen       = 60
	MaxMetaDescriptionLen = 160
	MaxCommentLen         = 2_000
	MaxCategoryNameLen    = 100
	MaxTagNameLen         = 50
	MaxUsernameLen        = 150
	MinPasswordLen        = 8
)

const (
	msgRequired      = "This field is required."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidSlug   = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func tooLong(max, got int) string {
	return fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", max, got)
}

// checkLen records an error when s exceeds max runes.
func checkLen(errs ValidationErrors, field, s string, max int) {
	if n := utf8.RuneCountInString(s); n > max {
		errs.Add(field, tooLong(max, n))
	}
}

// checkSlug validates an explicit slug or, when it is blank, the slug that
// would be derived from source.
func checkSlug(errs ValidationErrors, explicit, source, sourceField string, max int) {
	if explicit == "" {
		if slug.Generate(source) == "" && !errs.Has(sourceField) {
			errs.Add(sourceField, "Must contain at least one letter or digit.")
		}
		return
	}
	if !slugPattern.MatchString(explicit) {
		errs.Add("slug", msgInvalidSlug)
		return
	}
	checkLen(errs, "slug", explicit, max)
}

// PostInput is the post form as submitted. Author is never part of it.
type PostInput struct {
	Title           string
	Slug            string // admin form only; blank derives from Title
	Content         string
	Category        string // category UUID or blank
	Tags            []string
	Status          string
	MetaTitle       string
	MetaDescription string
}

// Normalize trims surrounding whitespace and applies the draft default.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Category = strings.TrimSpace(in.Category)
	in.MetaTitle = strings.TrimSpace(in.MetaTitle)
	in.MetaDescription = strings.TrimSpace(in.MetaDescription)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = string(models.PostStatusDraft)
	}
	tags := in.Tags[:0:0]
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
}

// Validate checks the input shape. References to categories and tags are
// resolved later against the repositories.
func (in PostInput) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if in.Title == "" {
		errs.Add("title", msgRequired)
	}
	checkLen(errs, "title", in.Title, MaxTitleLen)
	checkSlug(errs, in.Slug, in.Title, "title", MaxSlugLen)
	if reservedPostSlugs[in.Slug] {
		errs.Add("slug", "This slug is reserved.")
	}

	if strings.TrimSpace(in.Content) == "" {
		errs.Add("content", msgRequired)
	}
	checkLen(errs, "content", in.Content, MaxContentLen)

	if !models.PostStatus(in.Status).Valid() {
		errs.Add("status", msgInvalidChoice)
	}
	checkLen(errs, "meta_title", in.MetaTitle, MaxMetaTitleLen)
	checkLen(errs, "meta_description", in.MetaDescription, MaxMetaDescriptionLen)

	if in.Category != "" {
		if _, err := uuid.Parse(in.Category); err != nil {
			errs.Add("category", msgInvalidChoice)
		}
	}
	for _, t := range in.Tags {
		if _, err := uuid.Parse(t); err != nil {
			errs.Add("tags", msgInvalidChoice)
			break
		}
	}
	return errs
}

// FromPost pre-fills the form from an existing post.
func FromPost(p *models.Post) PostInput {
	in := PostInput{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Status:          string(p.Status),
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
	}
	if p.CategoryID != nil {
		in.Category = p.CategoryID.String()
	}
	for _, t := range p.Tags {
		in.Tags = append(in.Tags, t.ID.String())
	}
	return in
}

// HasTag reports whether id is selected. Used by form templates.
func (in PostInput) HasTag(id uuid.UUID) bool {
	s := id.String()
	for _, t := range in.Tags {
		if t == s {
			return true
		}
	}
	return false
}

// CommentInput is the comment form. Post and author are bound server-side.
type CommentInput struct {
	Content string
}

// Normalize trims surrounding whitespace.
func (in *CommentInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
}

// Validate requires non-blank content within the length limit. Call
// Normalize first; the limit applies to the trimmed text.
func (in CommentInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if in.Content == "" {
		errs.Add("content", msgRequired)
	}
	checkLen(errs, "content", in.Content, MaxCommentLen)
	return errs
}

// CategoryInput is the admin category form.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// Normalize trims surrounding whitespace.
func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
}

func (in CategoryInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if in.Name == "" {
		errs.Add("name", msgRequired)
	}
	checkLen(errs, "name", in.Name, MaxCategoryNameLen)
	checkSlug(errs, in.Slug, in.Name, "name", MaxCategoryNameLen)
	return errs
}

// TagInput is the admin tag form.
type TagInput struct {
	Name string
	Slug string
}

// Normalize trims surrounding whitespace.
func (in *TagInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
}

func (in TagInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if in.Name == "" {
		errs.Add("name", msgRequired)
	}
	checkLen(errs, "name", in.Name, MaxTagNameLen)
	checkSlug(errs, in.Slug, in.Name, "name", MaxTagNameLen)
	return errs
}

// UserInput is the admin "add user" form.
type UserInput struct {
	Username string
	Email    string
	Password string
	IsStaff  bool
}

// Normalize trims the identity fields. Passwords are taken verbatim.
func (in *UserInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in UserInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case in.Username == "":
		errs.Add("username", msgRequired)
	case !usernamePattern.MatchString(in.Username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	checkLen(errs, "username", in.Username, MaxUsernameLen)

	if in.Email == "" {
		errs.Add("email", msgRequired)
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		errs.Add("email", "Enter a valid email address.")
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLen {
		errs.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLen))
	}
	return errs
}

// Upload is a featured image received with a post form. The content type
// is sniffed from Data; whatever the client claimed is ignored.
type Upload struct {
	Filename string
	Data     []byte
}
