package router

import (
	"github.com/jrsteele09/go-nav-router/identity"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
)

// ruleContext is the full input set a reconciliation pass decides from.
// It is assembled under the router lock so every rule sees one coherent
// snapshot of the world.
type ruleContext struct {
	current       routes.Screen
	authDelivered bool
	user          *identity.UserHandle
	snapshot      *profile.Snapshot

	roleSelectionInProgress bool

	// continueOnboarding and nextOnboarding come from the session store's
	// onboarding record.
	continueOnboarding bool
	nextOnboarding     routes.Screen

	// onboardingComplete is derived from the profile snapshot (backend
	// flag preferred when true, roles+location otherwise).
	onboardingComplete bool
}

// rule is one row of the ordered decision list. The first rule that
// matches wins; ordering establishes precedence among competing signals
// and is itself part of the contract.
type rule struct {
	name  string
	apply func(rc *ruleContext) (routes.Screen, bool)
}

var reconcileRules = []rule{
	{"identity-mismatch", ruleIdentityMismatch},
	{"loading-gate", ruleLoadingGate},
	{"loading-resolution", ruleLoadingResolution},
	{"role-selection-suppressor", ruleSuppressor},
	{"resume-onboarding", ruleResumeOnboarding},
	{"screen-pass-through", rulePassThrough},
	{"onboarding-class", ruleOnboardingClass},
	{"home-class", ruleHomeClass},
	{"unauthenticated-fallback", ruleUnauthenticated},
	{"awaiting-profile", ruleAwaitingProfile},
	{"onboarding-incomplete", ruleOnboardingIncomplete},
	{"default-allow", ruleDefault},
}

// correctRoute evaluates the rule list top to bottom and returns the
// authoritative target plus the name of the rule that decided it.
func correctRoute(rc *ruleContext) (routes.Screen, string) {
	for _, r := range reconcileRules {
		if target, ok := r.apply(rc); ok {
			return target, r.name
		}
	}
	// ruleDefault always matches; unreachable.
	return rc.current, "default-allow"
}

// A signed-in handle paired with a profile owned by someone else means
// stale cached data is leaking across accounts. Force re-authentication
// regardless of anything else. An empty profile owner is not a mismatch:
// a brand-new profile simply has not been filled in yet.
func ruleIdentityMismatch(rc *ruleContext) (routes.Screen, bool) {
	if rc.user == nil || rc.snapshot == nil {
		return "", false
	}
	if rc.snapshot.UserID == "" || rc.user.ID == "" {
		return "", false
	}
	if rc.snapshot.UserID != rc.user.ID {
		return routes.ScreenLogin, true
	}
	return "", false
}

// Until the auth facade has spoken once, nothing is knowable: hold the
// Loading pseudo-route so a restoring session never flashes the logged-out
// landing page.
func ruleLoadingGate(rc *ruleContext) (routes.Screen, bool) {
	if !rc.authDelivered {
		return routes.ScreenLoading, true
	}
	return "", false
}

// Sitting on Loading with the facade's verdict in: decide the real
// destination now.
func ruleLoadingResolution(rc *ruleContext) (routes.Screen, bool) {
	if rc.current != routes.ScreenLoading {
		return "", false
	}
	if rc.user == nil {
		return routes.ScreenLanding, true
	}
	if rc.snapshot != nil {
		if rc.onboardingComplete {
			return homeFor(rc.snapshot), true
		}
		return rc.nextOnboarding, true
	}
	if rc.continueOnboarding {
		return rc.nextOnboarding, true
	}
	// Authenticated, profile still in flight, no local onboarding record.
	return routes.ScreenLoading, true
}

// A role selection is mid-interaction; a stale profile fetch must not yank
// the user away from the screen.
func ruleSuppressor(rc *ruleContext) (routes.Screen, bool) {
	if rc.roleSelectionInProgress {
		return rc.current, true
	}
	return "", false
}

// An unfinished onboarding flow pulls the user to its correct step. The
// profile is authoritative: when it reports onboarding complete, a local
// record that lags behind it must not pull the user back in.
func ruleResumeOnboarding(rc *ruleContext) (routes.Screen, bool) {
	if rc.user == nil || !rc.continueOnboarding || rc.onboardingComplete {
		return "", false
	}
	if rc.current != rc.nextOnboarding {
		return rc.nextOnboarding, true
	}
	return rc.current, true
}

// Screens the reconciler never forces the user off. Landing is the one
// exception: a fully onboarded user skips straight home, and a user with
// roles but no location is sent to location setup.
func rulePassThrough(rc *ruleContext) (routes.Screen, bool) {
	switch rc.current {
	case routes.ScreenLanding:
		if rc.user != nil && rc.snapshot != nil {
			if rc.onboardingComplete {
				return homeFor(rc.snapshot), true
			}
			if rc.snapshot.HasRoles() && !rc.snapshot.HasLocation() {
				return routes.ScreenChooseLocationMethod, true
			}
		}
		return rc.current, true
	case routes.ScreenSignUp, routes.ScreenLogin, routes.ScreenOTPVerification, routes.ScreenRoleSelection:
		return rc.current, true
	}
	return "", false
}

// Onboarding screens may be revisited until onboarding is done. Signed-out
// users fall through to the unauthenticated fallback.
func ruleOnboardingClass(rc *ruleContext) (routes.Screen, bool) {
	if rc.user == nil || !routes.IsOnboardingScreen(rc.current) {
		return "", false
	}
	if rc.onboardingComplete {
		return homeFor(rc.snapshot), true
	}
	return rc.current, true
}

// Home screens require completed onboarding; roles without a location go
// back to location setup, anything else is left as-is. Signed-out users
// fall through to the unauthenticated fallback.
func ruleHomeClass(rc *ruleContext) (routes.Screen, bool) {
	if rc.user == nil || !routes.IsHomeScreen(rc.current) {
		return "", false
	}
	if rc.onboardingComplete {
		return rc.current, true
	}
	if rc.snapshot.HasRoles() && !rc.snapshot.HasLocation() {
		return routes.ScreenChooseLocationMethod, true
	}
	return rc.current, true
}

// No user handle: only the auth screens are reachable.
func ruleUnauthenticated(rc *ruleContext) (routes.Screen, bool) {
	if rc.user != nil {
		return "", false
	}
	if routes.IsAuthScreen(rc.current) {
		return rc.current, true
	}
	return routes.ScreenLanding, true
}

// Authenticated but the profile has not arrived yet: it may simply still
// be loading, so the broad route classes stay put; anything more specific
// is deferred to onboarding.
func ruleAwaitingProfile(rc *ruleContext) (routes.Screen, bool) {
	if rc.snapshot != nil {
		return "", false
	}
	if routes.IsOnboardingScreen(rc.current) || routes.IsAuthScreen(rc.current) || routes.IsHomeScreen(rc.current) {
		return rc.current, true
	}
	return rc.nextOnboarding, true
}

// Profile present, onboarding incomplete: onboarding screens only.
func ruleOnboardingIncomplete(rc *ruleContext) (routes.Screen, bool) {
	if rc.onboardingComplete {
		return "", false
	}
	if routes.IsOnboardingScreen(rc.current) {
		return rc.current, true
	}
	return rc.nextOnboarding, true
}

// Authenticated and fully onboarded: the requested route stands.
func ruleDefault(rc *ruleContext) (routes.Screen, bool) {
	return rc.current, true
}

// homeFor picks the role-appropriate home screen, tasker checked first.
func homeFor(snapshot *profile.Snapshot) routes.Screen {
	if snapshot.HasRole(profile.RoleTasker) {
		return routes.ScreenPerformerHome
	}
	if snapshot.HasRole(profile.RolePoster) {
		return routes.ScreenPosterHome
	}
	return routes.ScreenPerformerHome
}
