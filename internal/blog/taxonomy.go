package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// taxonomyError turns a name or slug conflict into a form error.
func taxonomyError(entity string, err error) error {
	if err == nil {
		return nil
	}
	field, ok := conflictField(err)
	if !ok {
		return fmt.Errorf("save %s: %w", entity, err)
	}
	switch field {
	case "name":
		return ValidationErrors{"name": entity + " with this Name already exists."}
	case "slug":
		return ValidationErrors{"slug": entity + " with this Slug already exists."}
	default:
		return ValidationErrors{FormField: entity + " already exists."}
	}
}

func slugOrDerived(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return slug.Generate(name)
}

// Category loads a category for the admin form.
func (s *Service) Category(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Category, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// CreateCategory adds a category. A blank slug is derived from the name.
func (s *Service) CreateCategory(ctx context.Context, caller *Caller, in CategoryInput) (*models.Category, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	cat := &models.Category{
		Name:        in.Name,
		Slug:        slugOrDerived(in.Slug, in.Name),
		Description: in.Description,
	}
	if err := taxonomyError("Category", s.categories.Create(ctx, cat)); err != nil {
		return nil, err
	}
	return cat, nil
}

// UpdateCategory rewrites a category. A blank slug is derived again.
func (s *Service) UpdateCategory(ctx context.Context, caller *Caller, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	cat, err := s.Category(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return cat, err
	}
	updated := *cat
	updated.Name = in.Name
	updated.Slug = slugOrDerived(in.Slug, in.Name)
	updated.Description = in.Description
	if err := taxonomyError("Category", s.categories.Update(ctx, &updated)); err != nil {
		return cat, err
	}
	return &updated, nil
}

// DeleteCategory removes a category. Its posts stay, uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, caller *Caller, id uuid.UUID) error {
	if _, err := s.Category(ctx, caller, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Tag loads a tag for the admin form.
func (s *Service) Tag(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Tag, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

// CreateTag adds a tag. A blank slug is derived from the name.
func (s *Service) CreateTag(ctx context.Context, caller *Caller, in TagInput) (*models.Tag, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: in.Name, Slug: slugOrDerived(in.Slug, in.Name)}
	if err := taxonomyError("Tag", s.tags.Create(ctx, tag)); err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTag rewrites a tag.
func (s *Service) UpdateTag(ctx context.Context, caller *Caller, id uuid.UUID, in TagInput) (*models.Tag, error) {
	tag, err := s.Tag(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return tag, err
	}
	updated := *tag
	updated.Name = in.Name
	updated.Slug = slugOrDerived(in.Slug, in.Name)
	if err := taxonomyError("Tag", s.tags.Update(ctx, &updated)); err != nil {
		return tag, err
	}
	return &updated, nil
}

// DeleteTag removes a tag and its post links.
func (s *Service) DeleteTag(ctx context.Context, caller *Caller, id uuid.UUID) error {
	if _, err := s.Tag(ctx, caller, id); err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
