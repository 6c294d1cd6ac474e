package blog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"blogpress/internal/models"
)

// TOTPIssuer names the site in authenticator apps.
const TOTPIssuer = "BlogPress"

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User loads an account by ID.
func (s *Service) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Users lists every account.
func (s *Service) Users(ctx context.Context, caller *Caller) ([]models.User, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser adds an account from the admin form.
func (s *Service) CreateUser(ctx context.Context, caller *Caller, in UserInput) (*models.User, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in)
}

// RegisterUser adds an account without a caller. Used for seeding and
// command-line provisioning.
func (s *Service) RegisterUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in)
}

func (s *Service) createUser(ctx context.Context, in UserInput) (*models.User, error) {
	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsStaff:      in.IsStaff,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if field, ok := conflictField(err); ok {
			switch field {
			case "email":
				return nil, ValidationErrors{"email": "User with this Email already exists."}
			default:
				return nil, ValidationErrors{"username": "A user with that username already exists."}
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user created", "username", user.Username, "staff", user.IsStaff)
	return user, nil
}

// BeginTOTPEnrollment generates and stores a fresh TOTP secret for a user
// who has not enabled 2FA yet.
func (s *Service) BeginTOTPEnrollment(ctx context.Context, userID uuid.UUID) (*otp.Key, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, ErrForbidden
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp: %w", err)
	}
	if err := s.users.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}
	return key, nil
}

// VerifyTOTP checks code against the user's secret. The first valid code
// after enrollment enables 2FA on the account.
func (s *Service) VerifyTOTP(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.TOTPSecret == nil {
		return false, nil
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return false, nil
	}
	if !user.TOTPEnabled {
		if err := s.users.EnableTOTP(ctx, user.ID); err != nil {
			return false, fmt.Errorf("enable totp: %w", err)
		}
	}
	return true, nil
}

// ResetTwoFA clears a user's TOTP enrollment so they set it up again on
// their next login.
func (s *Service) ResetTwoFA(ctx context.Context, caller *Caller, userID uuid.UUID) error {
	if err := requireStaff(caller); err != nil {
		return err
	}
	if _, err := s.User(ctx, userID); err != nil {
		return err
	}
	if err := s.users.ResetTOTP(ctx, userID); err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	slog.Info("2fa reset", "user", userID, "by", caller.Username)
	return nil
}
