package blog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// requireStaff gates the admin operations.
func requireStaff(caller *Caller) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if !caller.IsStaff {
		return ErrForbidden
	}
	return nil
}

// ApproveComments makes the given comments publicly visible and returns
// how many were pending. Approval is one-way; approving an approved
// comment changes nothing.
func (s *Service) ApproveComments(ctx context.Context, caller *Caller, ids ...uuid.UUID) (int, error) {
	if err := requireStaff(caller); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.comments.Approve(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("approve comments: %w", err)
	}
	slog.Info("comments approved", "requested", len(ids), "approved", n, "by", caller.Username)
	return n, nil
}
