package database

import (
	"context"
	"fmt"
	"log/slog"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// Seed populates an empty database with development data: a staff user
// admin/admin and a sample category and tag. It does nothing once any
// user exists. The admin is prompted to set up 2FA on first login.
func Seed(ctx context.Context, users blog.UserRepository, categories blog.CategoryRepository, tags blog.TagRepository) error {
	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := models.HashPassword("admin")
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@blogpress.local",
		PasswordHash: hash,
		IsStaff:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	cat := &models.Category{Name: "General", Slug: "general", Description: "Posts that fit nowhere else."}
	if err := categories.Create(ctx, cat); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tags.Create(ctx, &models.Tag{Name: "Announcements", Slug: "announcements"}); err != nil {
		return fmt.Errorf("seed insert tag: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)
	return nil
}
