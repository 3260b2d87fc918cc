package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ideavaultapp/ideavault-server/internal/auth"
	"github.com/ideavaultapp/ideavault-server/internal/domain"
	domainerrors "github.com/ideavaultapp/ideavault-server/internal/errors"
	"github.com/ideavaultapp/ideavault-server/internal/sse"
	"github.com/ideavaultapp/ideavault-server/internal/store"
)

// MaxDisplayNameLength is the maximum number of characters allowed in a display name.
const MaxDisplayNameLength = 60

// ProfileService provides user profile management.
type ProfileService struct {
	store      *store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store *store.Store,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// GetProfile returns the user's account profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileRequest contains optional fields to update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName     *string
	FirstName       *string
	LastName        *string
	Theme           *domain.Theme
	AvatarURL       *string
	CurrentPassword *string
	NewPassword     *string
}

// UpdateProfile applies partial updates to a user's account.
// Changing the password requires the current password and revokes all
// sessions except the one making the request.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, currentSessionID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.DisplayName != nil {
		name := *req.DisplayName
		if len(name) > MaxDisplayNameLength {
			return nil, domainerrors.Validationf("display name must be %d characters or less", MaxDisplayNameLength)
		}
		user.DisplayName = name
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if req.Theme != nil {
		if !domain.ValidTheme(*req.Theme) {
			return nil, domainerrors.Validationf("invalid theme %q (must be light, dark, or system)", *req.Theme)
		}
		user.Theme = *req.Theme
	}

	if req.AvatarURL != nil {
		avatarURL := *req.AvatarURL
		if avatarURL != "" {
			if _, err := url.ParseRequestURI(avatarURL); err != nil {
				return nil, domainerrors.Validation("avatar_url must be a valid URL")
			}
		}
		user.AvatarURL = avatarURL
	}

	passwordChanged := false
	if req.NewPassword != nil {
		if err := s.changePassword(user, req.CurrentPassword, *req.NewPassword); err != nil {
			return nil, err
		}
		passwordChanged = true
	}

	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	// A password change invalidates every other device's session.
	if passwordChanged {
		if err := s.revokeOtherSessions(ctx, userID, currentSessionID); err != nil {
			s.logger.Warn("Failed to revoke sessions after password change",
				"user_id", userID,
				"error", err,
			)
		}
	}

	s.logger.Info("Profile updated",
		"user_id", userID,
		"password_changed", passwordChanged,
	)

	s.sseManager.Emit(sse.NewProfileUpdatedEvent(user))

	return user, nil
}

// changePassword verifies the current password and sets the new hash on user.
func (s *ProfileService) changePassword(user *domain.User, currentPassword *string, newPassword string) error {
	if currentPassword == nil {
		return domainerrors.Validation("current_password is required to change password")
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, *currentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.InvalidCredentials("current password is incorrect")
	}

	if len(newPassword) < 8 {
		return domainerrors.Validation("new password must be at least 8 characters")
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = newHash
	return nil
}

// revokeOtherSessions deletes all of the user's sessions except keepSessionID.
func (s *ProfileService) revokeOtherSessions(ctx context.Context, userID, keepSessionID string) error {
	sessions, err := s.store.ListUserSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for _, session := range sessions {
		if session.ID == keepSessionID {
			continue
		}
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", session.ID, err)
		}
	}

	return nil
}
