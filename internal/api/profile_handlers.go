package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
	"github.com/ideavaultapp/ideavault-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update my profile",
		Description: "Updates the authenticated user's profile settings. Changing the password requires the current password and signs out all devices.",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// GetProfileInput contains parameters for fetching the profile.
type GetProfileInput struct {
	Authorization string `header:"Authorization"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body UserResponse
}

// UpdateProfileRequest is the request body for profile updates.
// All fields are optional; absent fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName     *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=60" doc:"Display name"`
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,max=100" doc:"First name"`
	LastName        *string `json:"last_name,omitempty" validate:"omitempty,max=100" doc:"Last name"`
	Theme           *string `json:"theme,omitempty" enum:"light,dark,system" doc:"UI theme preference"`
	AvatarURL       *string `json:"avatar_url,omitempty" validate:"omitempty,max=2048" doc:"Avatar image URL (empty string clears it)"`
	CurrentPassword *string `json:"current_password,omitempty" doc:"Current password (required when changing password)"`
	NewPassword     *string `json:"new_password,omitempty" validate:"omitempty,min=8,max=1024" doc:"New password"`
}

// UpdateProfileInput wraps the update profile request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateProfileRequest{
		DisplayName:     input.Body.DisplayName,
		FirstName:       input.Body.FirstName,
		LastName:        input.Body.LastName,
		AvatarURL:       input.Body.AvatarURL,
		CurrentPassword: input.Body.CurrentPassword,
		NewPassword:     input.Body.NewPassword,
	}
	if input.Body.Theme != nil {
		theme := domain.Theme(*input.Body.Theme)
		req.Theme = &theme
	}

	// Access tokens don't identify a session, so a password change
	// signs the user out everywhere and they log in again.
	user, err := s.services.Profile.UpdateProfile(ctx, userID, "", req)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapUserResponse(user)}, nil
}
