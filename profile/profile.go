package profile

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Role represents what a user does on the marketplace. A user may hold both.
type Role string

const (
	RoleTasker Role = "tasker" // performs tasks posted by others
	RolePoster Role = "poster" // posts tasks for others to perform
)

var (
	ErrUnauthorized = errors.New("profile: unauthorized")
	ErrUnavailable  = errors.New("profile: backend unavailable")
)

// OnboardingStatus is the backend's own notion of whether onboarding
// finished. It can lag behind or disagree with what the profile data
// implies; see Snapshot.OnboardingComplete.
type OnboardingStatus struct {
	IsCompleted bool `json:"is_completed"`
}

// Snapshot is the router's cached view of the authenticated user's profile.
type Snapshot struct {
	UserID     string            `json:"user_id"`
	Roles      []Role            `json:"roles,omitempty"`
	Location   *LocationFix      `json:"location,omitempty"`
	Onboarding *OnboardingStatus `json:"onboarding_status,omitempty"`
}

// HasRole reports whether the snapshot carries the given role.
func (s *Snapshot) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasRoles reports whether the user holds at least one marketplace role.
func (s *Snapshot) HasRoles() bool {
	return s.HasRole(RoleTasker) || s.HasRole(RolePoster)
}

// HasLocation reports whether a usable location has been captured.
func (s *Snapshot) HasLocation() bool {
	return s != nil && s.Location != nil && s.Location.Usable()
}

// OnboardingComplete decides whether the user has finished onboarding.
//
// The backend's explicit flag wins when it says true. When the flag is
// absent, or says false, completion is re-derived from roles and location
// presence, since the backend can lag behind a just-finished onboarding flow.
// A disagreement between the two is logged but tolerated.
func (s *Snapshot) OnboardingComplete(log zerolog.Logger) bool {
	if s == nil {
		return false
	}
	derived := s.HasRoles() && s.HasLocation()
	if s.Onboarding == nil {
		return derived
	}
	if s.Onboarding.IsCompleted != derived {
		log.Warn().
			Str("userID", s.UserID).
			Bool("backendCompleted", s.Onboarding.IsCompleted).
			Bool("derivedCompleted", derived).
			Msg("onboarding completion flags disagree")
	}
	if s.Onboarding.IsCompleted {
		return true
	}
	return derived
}

// Patch is a sparse profile update; nil fields are left untouched.
type Patch struct {
	Roles      []Role
	Location   *LocationFix
	Onboarding *OnboardingStatus
}

// Gateway wraps the backend profile endpoints. Calls may fail or time out;
// callers must tolerate an error by proceeding with a nil snapshot, never
// by crashing or looping.
type Gateway interface {
	// FetchMyProfile returns the authenticated user's profile.
	FetchMyProfile(ctx context.Context) (*Snapshot, error)

	// UpsertProfile applies a sparse update and returns the resulting profile.
	UpsertProfile(ctx context.Context, patch Patch) (*Snapshot, error)
}
