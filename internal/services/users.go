package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
)

const minPasswordLength = 8

type UserService struct {
	*core
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	if len(pw) > 72 {
		return validationError("password must be at most 72 bytes")
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	email := models.NormalizeEmail(req.Email)
	// Display-name forms like "Bob <bob@example.com>" parse but are not
	// plain addresses.
	if addr, err := mail.ParseAddress(email); err != nil || email == "" || addr.Address != email {
		return models.User{}, validationError("a valid email address is required")
	}
	if err := validatePassword(req.Password); err != nil {
		return models.User{}, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return models.User{}, classify(err)
	}

	var user models.User
	err = s.run(ctx, func(u *unit) error {
		if _, err := u.q.GetUserByEmail(ctx, email); err == nil {
			return conflict("an account with this email already exists")
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		user, err = u.q.CreateUser(ctx, email, hash, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
		return err
	})
	return user, err
}

// Login checks credentials and issues a bearer token. Unknown emails and
// wrong passwords produce the same message.
func (s *UserService) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	invalid := validationError("invalid email or password")

	var user models.User
	err := s.read(ctx, func(q *database.Queries) error {
		var err error
		user, err = q.GetUserByEmail(ctx, models.NormalizeEmail(email))
		return err
	})
	if KindOf(err) == KindNotFound {
		return models.LoginResponse{}, invalid
	}
	if err != nil {
		return models.LoginResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.LoginResponse{}, invalid
	}

	token, expires, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return models.LoginResponse{}, classify(err)
	}
	return models.LoginResponse{Token: token, ExpiresAt: expires.Unix(), User: user}, nil
}

// RequestPasswordReset stores a reset token and mails it. Unknown addresses
// succeed without doing anything so that accounts cannot be probed.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.run(ctx, func(u *unit) error {
		user, err := u.q.GetUserByEmail(ctx, models.NormalizeEmail(email))
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		token := uuid.NewString()
		if err := u.q.SetResetToken(ctx, user.ID, token, s.now().Add(s.cfg.PasswordResetTTL)); err != nil {
			return err
		}
		s.notifier.QueuePasswordReset(u.effects, user, token)
		return nil
	})
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return classify(err)
	}

	return s.run(ctx, func(u *unit) error {
		user, err := u.q.GetUserByResetToken(ctx, strings.TrimSpace(token))
		if errors.Is(err, database.ErrNotFound) {
			return validationError("reset link is invalid or has expired")
		}
		if err != nil {
			return err
		}
		if !user.ResetTokenExpiry.Valid || s.now().After(user.ResetTokenExpiry.Time) {
			return validationError("reset link is invalid or has expired")
		}
		return u.q.UpdateUserPassword(ctx, user.ID, hash)
	})
}

func (s *UserService) Profile(ctx context.Context, actorID int64) (models.User, error) {
	var user models.User
	err := s.read(ctx, func(q *database.Queries) error {
		var err error
		user, err = q.GetUser(ctx, actorID)
		return err
	})
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID int64, req models.UpdateProfileRequest) (models.User, error) {
	var user models.User
	err := s.run(ctx, func(u *unit) error {
		if err := u.q.UpdateUserProfile(ctx, actorID, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)); err != nil {
			return err
		}
		var err error
		user, err = u.q.GetUser(ctx, actorID)
		return err
	})
	return user, err
}

func (s *UserService) ChangePassword(ctx context.Context, actorID int64, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}
	return s.run(ctx, func(u *unit) error {
		user, err := u.q.GetUser(ctx, actorID)
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
			return validationError("current password is incorrect")
		}
		hash, err := hashPassword(next)
		if err != nil {
			return err
		}
		return u.q.UpdateUserPassword(ctx, actorID, hash)
	})
}

