package blog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/paginate"
)

// Created-date choices for the admin post list.
const (
	CreatedToday     = "today"
	CreatedPast7Days = "past_7_days"
	CreatedThisMonth = "this_month"
	CreatedThisYear  = "this_year"
)

// CreatedSince returns the start of the named created-date range in now's
// location. Unknown choices report false and mean any date.
func CreatedSince(choice string, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch choice {
	case CreatedToday:
		return today, true
	case CreatedPast7Days:
		return today.AddDate(0, 0, -7), true
	case CreatedThisMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), true
	case CreatedThisYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// Stats are the dashboard counters.
type Stats struct {
	Posts           int
	Published       int
	Drafts          int
	PendingComments int
	Categories      int
	Tags            int
	Users           int
}

// Stats collects the dashboard counters.
func (s *Service) Stats(ctx context.Context, caller *Caller) (Stats, error) {
	var st Stats
	if err := requireStaff(caller); err != nil {
		return st, err
	}
	var err error
	if st.Posts, err = s.posts.Count(ctx, PostFilter{}); err != nil {
		return st, fmt.Errorf("count posts: %w", err)
	}
	if st.Published, err = s.posts.Count(ctx, PostFilter{Status: models.PostStatusPublished}); err != nil {
		return st, fmt.Errorf("count published: %w", err)
	}
	st.Drafts = st.Posts - st.Published

	pending := false
	if st.PendingComments, err = s.comments.Count(ctx, CommentFilter{Approved: &pending}); err != nil {
		return st, fmt.Errorf("count comments: %w", err)
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return st, fmt.Errorf("list categories: %w", err)
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return st, fmt.Errorf("list tags: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return st, fmt.Errorf("list users: %w", err)
	}
	st.Categories, st.Tags, st.Users = len(cats), len(tags), len(users)
	return st, nil
}

// AdminPosts lists posts of any status for the admin post list.
func (s *Service) AdminPosts(ctx context.Context, caller *Caller, f PostFilter, rawPage string) (paginate.Page[models.Post], error) {
	if err := requireStaff(caller); err != nil {
		return paginate.Page[models.Post]{}, err
	}
	return s.listPosts(ctx, f, rawPage)
}

// PostByID loads any post for the admin edit form.
func (s *Service) PostByID(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Post, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// AdminUpdatePost edits any post. Unlike UpdatePost the slug is editable;
// a blank slug keeps the current one. The author is never reassigned.
func (s *Service) AdminUpdatePost(ctx context.Context, caller *Caller, id uuid.UUID, in PostInput, upload *Upload) (*models.Post, error) {
	post, err := s.PostByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if in.Slug == "" {
		in.Slug = post.Slug
	}
	if err := s.savePost(ctx, post, in, upload); err != nil {
		return post, err
	}
	return post, nil
}

// AdminDeletePost deletes any post.
func (s *Service) AdminDeletePost(ctx context.Context, caller *Caller, id uuid.UUID) error {
	post, err := s.PostByID(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.deletePost(ctx, post)
}

// PostComments lists every comment on a post, approved or not.
func (s *Service) PostComments(ctx context.Context, caller *Caller, postID uuid.UUID) ([]models.Comment, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListForPost(ctx, postID, false)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AdminComments lists comments for moderation, newest first.
func (s *Service) AdminComments(ctx context.Context, caller *Caller, f CommentFilter, rawPage string) (paginate.Page[models.Comment], error) {
	if err := requireStaff(caller); err != nil {
		return paginate.Page[models.Comment]{}, err
	}
	total, err := s.comments.Count(ctx, f)
	if err != nil {
		return paginate.Page[models.Comment]{}, fmt.Errorf("count comments: %w", err)
	}
	win := paginate.New(rawPage, total, s.perPage)
	items, err := s.comments.List(ctx, f, win.PerPage, win.Offset())
	if err != nil {
		return paginate.Page[models.Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	return paginate.Page[models.Comment]{Window: win, Items: items}, nil
}

// Comment loads one comment for the admin.
func (s *Service) Comment(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Comment, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, caller *Caller, id uuid.UUID) error {
	if _, err := s.Comment(ctx, caller, id); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	slog.Info("comment deleted", "id", id, "by", caller.Username)
	return nil
}
