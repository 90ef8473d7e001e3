package onboarding_test

import (
	"testing"

	"github.com/jrsteele09/go-nav-router/onboarding"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/stretchr/testify/require"
)

const testNowMillis = int64(1_700_000_000_000)

func hyderabadFix() *profile.LocationFix {
	return &profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48}
}

func TestNextScreenTransitionTable(t *testing.T) {
	withMethod := func(m onboarding.Method) *onboarding.Progress {
		p := onboarding.New(testNowMillis)
		p.ChooseMethod(m, testNowMillis)
		return p
	}
	withFix := func() *onboarding.Progress {
		p := withMethod(onboarding.MethodInput)
		require.NoError(t, p.CaptureLocation(hyderabadFix(), testNowMillis))
		return p
	}
	completed := func() *onboarding.Progress {
		p := withFix()
		require.NoError(t, p.SelectRoles([]profile.Role{profile.RoleTasker}, testNowMillis))
		return p
	}

	tests := []struct {
		name     string
		progress *onboarding.Progress
		want     routes.Screen
	}{
		{"no record", nil, routes.ScreenChooseLocationMethod},
		{"location step, no method", onboarding.New(testNowMillis), routes.ScreenChooseLocationMethod},
		{"location step, input method, no fix", withMethod(onboarding.MethodInput), routes.ScreenLocationInput},
		{"location step, search method, no fix", withMethod(onboarding.MethodSearch), routes.ScreenSearchLocation},
		{"location step, gps method, no fix", withMethod(onboarding.MethodGps), routes.ScreenLocationConfirm},
		{"roles step, fix captured", withFix(), routes.ScreenRoleSelection},
		{"complete", completed(), routes.ScreenOnboardingComplete},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.progress.NextScreen())
		})
	}
}

func TestNextScreenIsPure(t *testing.T) {
	p := onboarding.New(testNowMillis)
	p.ChooseMethod(onboarding.MethodSearch, testNowMillis)

	first := p.NextScreen()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, p.NextScreen())
	}
}

func TestCompleteStepAlwaysYieldsComplete(t *testing.T) {
	p := onboarding.New(testNowMillis)
	p.ChooseMethod(onboarding.MethodGps, testNowMillis)
	require.NoError(t, p.CaptureLocation(hyderabadFix(), testNowMillis))
	require.NoError(t, p.SelectRoles([]profile.Role{profile.RolePoster}, testNowMillis))

	require.Equal(t, onboarding.StepComplete, p.Step)
	for i := 0; i < 3; i++ {
		require.Equal(t, routes.ScreenOnboardingComplete, p.NextScreen())
	}
}

func TestSelectRolesRejectsEmptySelection(t *testing.T) {
	p := onboarding.New(testNowMillis)
	p.ChooseMethod(onboarding.MethodInput, testNowMillis)
	require.NoError(t, p.CaptureLocation(hyderabadFix(), testNowMillis))

	err := p.SelectRoles(nil, testNowMillis)
	require.ErrorIs(t, err, onboarding.ErrNoRolesSelected)
	require.Equal(t, onboarding.StepRoles, p.Step)
}

func TestCaptureLocationRequiresMethodAndFix(t *testing.T) {
	p := onboarding.New(testNowMillis)
	require.ErrorIs(t, p.CaptureLocation(hyderabadFix(), testNowMillis), onboarding.ErrNoMethodSelected)

	p.ChooseMethod(onboarding.MethodInput, testNowMillis)
	require.ErrorIs(t, p.CaptureLocation(nil, testNowMillis), onboarding.ErrNoLocationFix)
	require.ErrorIs(t, p.CaptureLocation(&profile.LocationFix{Kind: profile.LocationKindAddress}, testNowMillis), onboarding.ErrNoLocationFix)
}

func TestNormalizeDemotesUnbackedComplete(t *testing.T) {
	p := &onboarding.Progress{Step: onboarding.StepComplete}
	p.Normalize()
	require.Equal(t, onboarding.StepLocation, p.Step)

	p = &onboarding.Progress{
		Step:     onboarding.StepComplete,
		Location: &onboarding.LocationChoice{Method: onboarding.MethodInput, Fix: hyderabadFix()},
	}
	p.Normalize()
	require.Equal(t, onboarding.StepRoles, p.Step)
}

func TestNormalizePromotesBackedProgress(t *testing.T) {
	p := &onboarding.Progress{
		Step:     onboarding.StepRoles,
		Location: &onboarding.LocationChoice{Method: onboarding.MethodSearch, Fix: hyderabadFix()},
		Roles:    &onboarding.RoleChoice{Selected: []profile.Role{profile.RoleTasker, profile.RolePoster}},
	}
	p.Normalize()
	require.Equal(t, onboarding.StepComplete, p.Step)
	require.True(t, p.Completed())
}
