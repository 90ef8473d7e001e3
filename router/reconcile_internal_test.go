package router

import (
	"testing"

	"github.com/jrsteele09/go-nav-router/identity"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/stretchr/testify/require"
)

// Rule-by-rule checks of the ordered decision list, independent of any
// router wiring.
func TestCorrectRouteRuleTable(t *testing.T) {
	user := &identity.UserHandle{ID: "user-1"}
	ownSnapshot := &profile.Snapshot{UserID: "user-1", Roles: []profile.Role{profile.RoleTasker}}
	foreignSnapshot := &profile.Snapshot{UserID: "user-2"}

	tests := []struct {
		name     string
		rc       ruleContext
		want     routes.Screen
		wantRule string
	}{
		{
			"identity mismatch beats everything",
			ruleContext{current: routes.ScreenPerformerHome, authDelivered: true, user: user,
				snapshot: foreignSnapshot, onboardingComplete: true},
			routes.ScreenLogin, "identity-mismatch",
		},
		{
			"empty profile owner is not a mismatch",
			ruleContext{current: routes.ScreenLoading, authDelivered: true, user: user,
				snapshot: &profile.Snapshot{}, nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenChooseLocationMethod, "loading-resolution",
		},
		{
			"loading gate holds before first callback",
			ruleContext{current: routes.ScreenLanding},
			routes.ScreenLoading, "loading-gate",
		},
		{
			"loading resolves to landing for signed-out user",
			ruleContext{current: routes.ScreenLoading, authDelivered: true},
			routes.ScreenLanding, "loading-resolution",
		},
		{
			"loading waits for profile",
			ruleContext{current: routes.ScreenLoading, authDelivered: true, user: user},
			routes.ScreenLoading, "loading-resolution",
		},
		{
			"suppressor pins the current screen",
			ruleContext{current: routes.ScreenRoleSelection, authDelivered: true, user: user,
				roleSelectionInProgress: true, continueOnboarding: true,
				nextOnboarding: routes.ScreenLocationInput},
			routes.ScreenRoleSelection, "role-selection-suppressor",
		},
		{
			"resume onboarding corrects the step",
			ruleContext{current: routes.ScreenSearchLocation, authDelivered: true, user: user,
				continueOnboarding: true, nextOnboarding: routes.ScreenRoleSelection},
			routes.ScreenRoleSelection, "resume-onboarding",
		},
		{
			"resume onboarding pulls in from outside",
			ruleContext{current: routes.ScreenMyTasks, authDelivered: true, user: user,
				continueOnboarding: true, nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenChooseLocationMethod, "resume-onboarding",
		},
		{
			"login is never redirected away from",
			ruleContext{current: routes.ScreenLogin, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true},
			routes.ScreenLogin, "screen-pass-through",
		},
		{
			"onboarding screen after completion goes home",
			ruleContext{current: routes.ScreenLocationConfirm, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true},
			routes.ScreenPerformerHome, "onboarding-class",
		},
		{
			"home allowed when complete",
			ruleContext{current: routes.ScreenPosterHome, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true},
			routes.ScreenPosterHome, "home-class",
		},
		{
			"signed-out user on a home screen forced to landing",
			ruleContext{current: routes.ScreenPerformerHome, authDelivered: true},
			routes.ScreenLanding, "unauthenticated-fallback",
		},
		{
			"signed-out user on an onboarding screen forced to landing",
			ruleContext{current: routes.ScreenChooseLocationMethod, authDelivered: true},
			routes.ScreenLanding, "unauthenticated-fallback",
		},
		{
			"stale local record yields to a complete profile",
			ruleContext{current: routes.ScreenLocationInput, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true,
				continueOnboarding: true, nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenPerformerHome, "onboarding-class",
		},
		{
			"stale local record does not pull a complete user off home",
			ruleContext{current: routes.ScreenPosterHome, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true,
				continueOnboarding: true, nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenPosterHome, "home-class",
		},
		{
			"unauthenticated protected route forced to landing",
			ruleContext{current: routes.ScreenTaskDetails, authDelivered: true},
			routes.ScreenLanding, "unauthenticated-fallback",
		},
		{
			"authenticated without profile defers to onboarding",
			ruleContext{current: routes.ScreenTaskDetails, authDelivered: true, user: user,
				nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenChooseLocationMethod, "awaiting-profile",
		},
		{
			"incomplete profile locks to onboarding",
			ruleContext{current: routes.ScreenMyTasks, authDelivered: true, user: user,
				snapshot: &profile.Snapshot{UserID: "user-1"}, nextOnboarding: routes.ScreenChooseLocationMethod},
			routes.ScreenChooseLocationMethod, "onboarding-incomplete",
		},
		{
			"complete and authenticated route stands",
			ruleContext{current: routes.ScreenTaskDetails, authDelivered: true, user: user,
				snapshot: ownSnapshot, onboardingComplete: true},
			routes.ScreenTaskDetails, "default-allow",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target, ruleName := correctRoute(&tc.rc)
			require.Equal(t, tc.want, target)
			require.Equal(t, tc.wantRule, ruleName)
		})
	}
}
