// Package onboarding models the post-signup flow (choose a location
// method, capture a location, select roles) independently of any UI.
package onboarding

import (
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/pkg/errors"
)

// Step is the coarse position within the onboarding flow.
type Step string

const (
	StepLocation Step = "location"
	StepRoles    Step = "roles"
	StepComplete Step = "complete"
)

// Method is how the user chose to provide their location.
type Method string

const (
	MethodSearch Method = "search"
	MethodInput  Method = "input"
	MethodGps    Method = "gps"
)

var (
	ErrNoRolesSelected  = errors.New("onboarding: cannot complete role step with no roles selected")
	ErrNoLocationFix    = errors.New("onboarding: cannot complete location step without a captured location")
	ErrNoMethodSelected = errors.New("onboarding: a location method must be chosen first")
)

// LocationChoice records the chosen capture method and, once captured, the fix.
type LocationChoice struct {
	Method Method               `json:"method"`
	Fix    *profile.LocationFix `json:"fix,omitempty"`
}

// RoleChoice records the roles picked on the role-selection screen.
type RoleChoice struct {
	Selected []profile.Role `json:"selected"`
}

// Progress is the persisted record of how far through onboarding the user
// is. The Complete step is always re-derived from the data, never trusted
// from storage: a record claiming completion without roles or a location is
// demoted on load.
type Progress struct {
	Step          Step            `json:"step"`
	Location      *LocationChoice `json:"location_data,omitempty"`
	Roles         *RoleChoice     `json:"role_data,omitempty"`
	UpdatedMillis int64           `json:"last_updated_epoch_millis"`
}

// New starts a fresh onboarding flow at the location step.
func New(nowMillis int64) *Progress {
	return &Progress{Step: StepLocation, UpdatedMillis: nowMillis}
}

func (p *Progress) hasFix() bool {
	return p.Location != nil && p.Location.Fix.Usable()
}

func (p *Progress) hasRoles() bool {
	return p.Roles != nil && len(p.Roles.Selected) > 0
}

// Completed reports whether the flow is genuinely finished: roles selected
// and a location captured.
func (p *Progress) Completed() bool {
	return p != nil && p.hasRoles() && p.hasFix()
}

// Normalize re-derives the step invariant after loading from storage.
// A stored Complete without the backing data falls back to the earliest
// unfinished step.
func (p *Progress) Normalize() {
	if p == nil {
		return
	}
	if p.Step == StepComplete && !p.Completed() {
		if !p.hasFix() {
			p.Step = StepLocation
		} else {
			p.Step = StepRoles
		}
	}
	if p.Completed() {
		p.Step = StepComplete
	}
}

// NextScreen derives the screen the user should see next. Pure and
// deterministic; a nil receiver means onboarding has not started.
func (p *Progress) NextScreen() routes.Screen {
	if p == nil {
		return routes.ScreenChooseLocationMethod
	}
	switch p.Step {
	case StepLocation:
		if p.Location == nil {
			return routes.ScreenChooseLocationMethod
		}
		if p.hasFix() {
			return routes.ScreenRoleSelection
		}
		switch p.Location.Method {
		case MethodInput:
			return routes.ScreenLocationInput
		case MethodSearch:
			return routes.ScreenSearchLocation
		case MethodGps:
			return routes.ScreenLocationConfirm
		}
		return routes.ScreenChooseLocationMethod
	case StepRoles:
		if p.hasRoles() {
			return routes.ScreenOnboardingComplete
		}
		return routes.ScreenRoleSelection
	case StepComplete:
		return routes.ScreenOnboardingComplete
	}
	return routes.ScreenChooseLocationMethod
}

// ChooseMethod records the location capture method and keeps the flow on
// the location step.
func (p *Progress) ChooseMethod(method Method, nowMillis int64) {
	if p.Location == nil {
		p.Location = &LocationChoice{}
	}
	p.Location.Method = method
	p.Step = StepLocation
	p.UpdatedMillis = nowMillis
}

// CaptureLocation completes the location sub-step. A method must have been
// chosen and the fix must be usable.
func (p *Progress) CaptureLocation(fix *profile.LocationFix, nowMillis int64) error {
	if p.Location == nil || p.Location.Method == "" {
		return ErrNoMethodSelected
	}
	if !fix.Usable() {
		return ErrNoLocationFix
	}
	p.Location.Fix = fix
	p.Step = StepRoles
	p.UpdatedMillis = nowMillis
	return nil
}

// SelectRoles completes the role step. An empty selection does not advance
// the flow.
func (p *Progress) SelectRoles(selected []profile.Role, nowMillis int64) error {
	if len(selected) == 0 {
		return ErrNoRolesSelected
	}
	if !p.hasFix() {
		return ErrNoLocationFix
	}
	p.Roles = &RoleChoice{Selected: selected}
	p.Step = StepComplete
	p.UpdatedMillis = nowMillis
	return nil
}
