package blog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

func TestCreatePostDerivesSlugAndAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{
		Title:   "  Hello World  ",
		Content: "First!",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "Hello World", p.Title)
	assert.Equal(t, f.alice.ID, p.AuthorID)
	assert.Equal(t, models.PostStatusDraft, p.Status)
	assert.Equal(t, "/post/hello-world/", p.URL())
}

func TestCreatePostSuffixesCollidingSlug(t *testing.T) {
	f := newFixture(t)

	first := f.post(t, f.alice, "Hello World", models.PostStatusPublished)
	second := f.post(t, f.bob, "Hello, World!", models.PostStatusPublished)
	third := f.post(t, f.alice, "hello world", models.PostStatusDraft)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-2", second.Slug)
	assert.Equal(t, "hello-world-3", third.Slug)
}

func TestCreatePostSkipsReservedSlug(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, f.alice, "Create", models.PostStatusPublished)
	assert.Equal(t, "create-2", p.Slug)

	_, err := f.svc.AdminUpdatePost(context.Background(), f.staff, p.ID, blog.PostInput{
		Title: "Create", Slug: "create", Content: "x",
	}, nil)
	verrs, ok := blog.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "This slug is reserved.", verrs["slug"])
}

func TestCreatePostRequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreatePost(context.Background(), nil, blog.PostInput{Title: "x", Content: "y"}, nil)
	assert.ErrorIs(t, err, blog.ErrUnauthenticated)

	n, err := f.db.Posts().Count(context.Background(), blog.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{
		Title:     strings.Repeat("t", blog.MaxTitleLen+1),
		Status:    "archived",
		MetaTitle: strings.Repeat("m", blog.MaxMetaTitleLen+1),
		Category:  uuid.NewString(),
		Tags:      []string{"not-a-uuid"},
	}, nil)

	verrs, ok := blog.AsValidation(err)
	require.True(t, ok, "want validation errors, got %v", err)
	assert.Equal(t, "Ensure this value has at most 200 characters (it has 201).", verrs["title"])
	assert.Equal(t, "This field is required.", verrs["content"])
	assert.Contains(t, verrs, "status")
	assert.Contains(t, verrs, "meta_title")
	assert.Contains(t, verrs, "category")
	assert.Contains(t, verrs, "tags")
}

func TestCreatePostWithTaxonomy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.svc.CreateCategory(ctx, f.staff, blog.CategoryInput{Name: "Technology"})
	require.NoError(t, err)
	tag, err := f.svc.CreateTag(ctx, f.staff, blog.TagInput{Name: "Go Lang"})
	require.NoError(t, err)

	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{
		Title:    "Tagged",
		Content:  "body",
		Status:   "published",
		Category: cat.ID.String(),
		Tags:     []string{tag.ID.String(), tag.ID.String()},
	}, nil)
	require.NoError(t, err)

	got, err := f.svc.PublishedPost(ctx, p.Slug)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "technology", got.Category.Slug)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go-lang", got.Tags[0].Slug)
}

func TestCreatePostStoresImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{Title: "Pic", Content: "body"}, pngUpload(t, 4, 4))
	require.NoError(t, err)
	require.True(t, p.HasImage())
	assert.True(t, strings.HasPrefix(*p.FeaturedImage, "posts/"))
	assert.True(t, strings.HasSuffix(*p.FeaturedImage, ".png"))
	assert.Equal(t, 1, f.files.len())
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreatePost(context.Background(), f.alice, blog.PostInput{Title: "Pic", Content: "body"},
		&blog.Upload{Filename: "evil.png", Data: []byte("#!/bin/sh\necho hi\n")})

	verrs, ok := blog.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "featured_image")
	assert.Zero(t, f.files.len())
}

func TestPublicListingShowsOnlyPublishedNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.post(t, f.alice, "One", models.PostStatusPublished)
	f.post(t, f.alice, "Secret", models.PostStatusDraft)
	f.post(t, f.bob, "Two", models.PostStatusPublished)
	f.post(t, f.alice, "Three", models.PostStatusPublished)

	page, err := f.svc.PublishedPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.NumPages)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "three", page.Items[0].Slug)
	assert.Equal(t, "two", page.Items[1].Slug)

	last, err := f.svc.PublishedPosts(ctx, "99")
	require.NoError(t, err)
	assert.Equal(t, 2, last.Number)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "one", last.Items[0].Slug)

	bad, err := f.svc.PublishedPosts(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, bad.Number)
}

func TestCategoryAndTagListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.svc.CreateCategory(ctx, f.staff, blog.CategoryInput{Name: "Technology"})
	require.NoError(t, err)
	tag, err := f.svc.CreateTag(ctx, f.staff, blog.TagInput{Name: "Go"})
	require.NoError(t, err)

	for _, status := range []string{"published", "draft"} {
		_, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{
			Title: "In " + status, Content: "x", Status: status,
			Category: cat.ID.String(), Tags: []string{tag.ID.String()},
		}, nil)
		require.NoError(t, err)
	}
	f.post(t, f.alice, "Elsewhere", models.PostStatusPublished)

	gotCat, page, err := f.svc.CategoryPosts(ctx, "technology", "1")
	require.NoError(t, err)
	assert.Equal(t, "Technology", gotCat.Name)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "in-published", page.Items[0].Slug)

	gotTag, page, err := f.svc.TagPosts(ctx, "go", "")
	require.NoError(t, err)
	assert.Equal(t, "Go", gotTag.Name)
	require.Len(t, page.Items, 1)

	_, _, err = f.svc.CategoryPosts(ctx, "missing", "")
	assert.ErrorIs(t, err, blog.ErrNotFound)
	_, _, err = f.svc.TagPosts(ctx, "missing", "")
	assert.ErrorIs(t, err, blog.ErrNotFound)
}

func TestDraftIsNotPublic(t *testing.T) {
	f := newFixture(t)
	draft := f.post(t, f.alice, "Work in progress", models.PostStatusDraft)

	_, err := f.svc.PublishedPost(context.Background(), draft.Slug)
	assert.ErrorIs(t, err, blog.ErrNotFound)
	_, err = f.svc.PublishedPost(context.Background(), "no-such-post")
	assert.ErrorIs(t, err, blog.ErrNotFound)
}

func TestUpdatePostByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "Original", models.PostStatusDraft)

	updated, err := f.svc.UpdatePost(ctx, f.alice, p.Slug, blog.PostInput{
		Title:   "Renamed",
		Content: "new body",
		Status:  "published",
		Slug:    "ignored",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, f.alice.ID, updated.AuthorID)
	assert.True(t, !updated.UpdatedAt.Before(p.UpdatedAt))

	got, err := f.svc.PublishedPost(ctx, "original")
	require.NoError(t, err)
	assert.Equal(t, "new body", got.Content)
}

func TestNonOwnerCannotModify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "Mine", models.PostStatusPublished)

	got, err := f.svc.UpdatePost(ctx, f.bob, p.Slug, blog.PostInput{Title: "Hijacked", Content: "x"}, nil)
	assert.ErrorIs(t, err, blog.ErrForbidden)
	require.NotNil(t, got)
	assert.Equal(t, "Mine", got.Title)

	_, err = f.svc.DeletePost(ctx, f.bob, p.Slug)
	assert.ErrorIs(t, err, blog.ErrForbidden)

	_, _, err = f.svc.DeletePostImage(ctx, f.bob, p.Slug)
	assert.ErrorIs(t, err, blog.ErrForbidden)

	// Staff get no shortcut on the public path either.
	_, err = f.svc.DeletePost(ctx, f.staff, p.Slug)
	assert.ErrorIs(t, err, blog.ErrForbidden)

	stored, err := f.svc.PublishedPost(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestModifyRequiresLogin(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, f.alice, "Mine", models.PostStatusPublished)

	_, err := f.svc.UpdatePost(context.Background(), nil, p.Slug, blog.PostInput{Title: "x", Content: "y"}, nil)
	assert.ErrorIs(t, err, blog.ErrUnauthenticated)
	_, err = f.svc.PostForEdit(context.Background(), f.alice, "missing")
	assert.ErrorIs(t, err, blog.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{Title: "Gone", Content: "x", Status: "published"}, pngUpload(t, 2, 2))
	require.NoError(t, err)

	_, err = f.svc.DeletePost(ctx, f.alice, p.Slug)
	require.NoError(t, err)

	_, err = f.svc.PublishedPost(ctx, p.Slug)
	assert.ErrorIs(t, err, blog.ErrNotFound)
	assert.Zero(t, f.files.len())
}

func TestDeletePostImageIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{Title: "Pic", Content: "x"}, pngUpload(t, 2, 2))
	require.NoError(t, err)

	got, removed, err := f.svc.DeletePostImage(ctx, f.alice, p.Slug)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, got.HasImage())
	assert.Zero(t, f.files.len())

	got, removed, err = f.svc.DeletePostImage(ctx, f.alice, p.Slug)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.False(t, got.HasImage())
}

func TestDeletePostImageWithMissingFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{Title: "Pic", Content: "x"}, pngUpload(t, 2, 2))
	require.NoError(t, err)
	require.NoError(t, f.files.Delete(ctx, *p.FeaturedImage))

	got, removed, err := f.svc.DeletePostImage(ctx, f.alice, p.Slug)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, got.HasImage())
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreatePost(ctx, f.alice, blog.PostInput{Title: "Pic", Content: "x"}, pngUpload(t, 2, 2))
	require.NoError(t, err)
	oldKey := *p.FeaturedImage

	updated, err := f.svc.UpdatePost(ctx, f.alice, p.Slug, blog.PostInput{Title: "Pic", Content: "x"}, pngUpload(t, 3, 3))
	require.NoError(t, err)
	require.True(t, updated.HasImage())
	assert.NotEqual(t, oldKey, *updated.FeaturedImage)

	exists, err := f.files.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, f.files.len())
}

func TestUploadsDisabledWithoutFileStore(t *testing.T) {
	f := newFixture(t)
	svc := blog.NewService(blog.Deps{
		Posts:      f.db.Posts(),
		Categories: f.db.Categories(),
		Tags:       f.db.Tags(),
		Comments:   f.db.Comments(),
		Users:      f.db.Users(),
	})
	_, err := svc.CreatePost(context.Background(), f.alice, blog.PostInput{Title: "Pic", Content: "x"}, pngUpload(t, 2, 2))
	verrs, ok := blog.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "featured_image")
	assert.Equal(t, blog.DefaultPerPage, svc.PerPage())
}
