package blog

import (
	"context"
	"fmt"
	"log/slog"

	"blogpress/internal/models"
)

// SubmitComment records a comment by caller on post. New comments are
// held for moderation and stay hidden until approved.
func (s *Service) SubmitComment(ctx context.Context, caller *Caller, post *models.Post, in CommentInput) (*models.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if post == nil || !post.IsPublished() {
		return nil, ErrNotFound
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	c := &models.Comment{
		PostID:   post.ID,
		AuthorID: caller.ID,
		Content:  in.Content,
		Approved: false,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c.AuthorName = caller.Username
	c.PostTitle = post.Title
	c.PostSlug = post.Slug

	slog.Info("comment submitted", "post", post.Slug, "author", caller.Username)
	return c, nil
}
