package models

import (
	"regexp"
	"strings"
	"time"

	"tickbug-backend/internal/authz"
)

// DefaultThemeColor is used when a project colour is missing or malformed.
const DefaultThemeColor = "3b82f6"

var themeColorPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// NormalizeThemeColor accepts "abc123" or "#abc123" and falls back to the
// default for anything else.
func NormalizeThemeColor(color string) string {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if !themeColorPattern.MatchString(color) {
		return DefaultThemeColor
	}
	return strings.ToLower(color)
}

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ThemeColor  string    `json:"theme_color"`
	Archived    bool      `json:"archived"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectListing is a project as seen by one member.
type ProjectListing struct {
	Project
	Role         authz.Role `json:"role"`
	DisplayOrder int        `json:"display_order"`
}

type Membership struct {
	ProjectID    int64                   `json:"project_id"`
	UserID       int64                   `json:"user_id"`
	Role         authz.Role              `json:"role"`
	Preferences  NotificationPreferences `json:"notification_preferences"`
	DisplayOrder int                     `json:"display_order"`
	CreatedAt    time.Time               `json:"created_at"`
}

// Member is a membership joined with the user's public profile.
type Member struct {
	Membership
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
