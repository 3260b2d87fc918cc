package domain

import "time"

// Theme is the user's persisted UI theme preference.
type Theme string

const (
	// ThemeLight forces the light color scheme.
	ThemeLight Theme = "light"
	// ThemeDark forces the dark color scheme.
	ThemeDark Theme = "dark"
	// ThemeSystem follows the client OS preference.
	ThemeSystem Theme = "system"
)

// ValidTheme reports whether t is one of the supported theme values.
func ValidTheme(t Theme) bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// User represents an authenticated user account in the system.
type User struct {
	Syncable
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	IsRoot       bool      `json:"is_root"`
	DisplayName  string    `json:"display_name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Theme        Theme     `json:"theme,omitempty"` // empty = system
	LastLoginAt  time.Time `json:"last_login_at"`
}

// FullName returns the user's full name, composed from first and last names.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.DisplayName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to FullName, then email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	fullName := u.FullName()
	if fullName != "" {
		return fullName
	}
	return u.Email
}

// EffectiveTheme returns the stored theme, defaulting to system.
func (u *User) EffectiveTheme() Theme {
	if u.Theme == "" {
		return ThemeSystem
	}
	return u.Theme
}

// Session represents an active user session with refresh token.
// Each device gets its own session - you can see what's connected.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	// Device information - structured data from client
	DeviceType    string `json:"device_type"`           // mobile, tablet, desktop, web
	Platform      string `json:"platform"`              // iOS, Android, Windows, macOS, Linux, Web
	ClientName    string `json:"client_name"`           // IdeaVault Mobile, IdeaVault Web
	ClientVersion string `json:"client_version"`        // 1.0.0
	DeviceName    string `json:"device_name,omitempty"` // Simon's iPhone (optional, user-set)
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName returns a human-readable description of the device.
func (s *Session) DisplayName() string {
	if s.DeviceName != "" {
		return s.DeviceName
	}

	if s.Platform != "" {
		return s.Platform
	}

	// "IdeaVault Mobile 1.0.0"
	if s.ClientVersion != "" {
		return s.ClientName + " " + s.ClientVersion
	}

	if s.ClientName != "" {
		return s.ClientName
	}

	return "Unknown Device"
}
