package profile_test

import (
	"testing"

	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLocationLegacyShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want *profile.LocationFix
	}{
		{
			"lat lng object",
			map[string]interface{}{"lat": 17.38, "lng": 78.48},
			&profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48},
		},
		{
			"latitude longitude object",
			map[string]interface{}{"latitude": 51.5, "longitude": -0.12},
			&profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 51.5, Lng: -0.12},
		},
		{
			"coordinates array object",
			map[string]interface{}{"coordinates": []interface{}{17.38, 78.48}},
			&profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48},
		},
		{
			"bare pair",
			[]interface{}{17.38, 78.48},
			&profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48},
		},
		{
			"address string",
			"1 Market Street, Hyderabad",
			&profile.LocationFix{Kind: profile.LocationKindAddress, Address: "1 Market Street, Hyderabad"},
		},
		{
			"address object",
			map[string]interface{}{"address": "MG Road"},
			&profile.LocationFix{Kind: profile.LocationKindAddress, Address: "MG Road"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fix, ok := profile.NormalizeLocation(tc.raw)
			require.True(t, ok)
			require.Equal(t, tc.want, fix)
			require.True(t, fix.Usable())
		})
	}
}

func TestNormalizeLocationRejectsJunk(t *testing.T) {
	for _, raw := range []interface{}{
		nil,
		"",
		"   ",
		[]interface{}{17.38},
		[]interface{}{"a", "b"},
		map[string]interface{}{"lat": 17.38},
		map[string]interface{}{"city": "Hyderabad"},
		42,
	} {
		_, ok := profile.NormalizeLocation(raw)
		require.False(t, ok, "raw=%v", raw)
	}
}

func TestOnboardingCompleteDerivation(t *testing.T) {
	log := zerolog.Nop()
	fix := &profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48}

	tests := []struct {
		name     string
		snapshot *profile.Snapshot
		want     bool
	}{
		{"nil snapshot", nil, false},
		{"empty profile", &profile.Snapshot{}, false},
		{"roles only", &profile.Snapshot{Roles: []profile.Role{profile.RolePoster}}, false},
		{"location only", &profile.Snapshot{Location: fix}, false},
		{"roles and location, no backend flag", &profile.Snapshot{Roles: []profile.Role{profile.RoleTasker}, Location: fix}, true},
		{
			"backend true wins over sparse data",
			&profile.Snapshot{Onboarding: &profile.OnboardingStatus{IsCompleted: true}},
			true,
		},
		{
			"backend false falls back to derived",
			&profile.Snapshot{
				Roles:      []profile.Role{profile.RoleTasker},
				Location:   fix,
				Onboarding: &profile.OnboardingStatus{IsCompleted: false},
			},
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.snapshot.OnboardingComplete(log))
		})
	}
}

func TestHasRole(t *testing.T) {
	s := &profile.Snapshot{Roles: []profile.Role{profile.RoleTasker, profile.RolePoster}}
	require.True(t, s.HasRole(profile.RoleTasker))
	require.True(t, s.HasRole(profile.RolePoster))
	require.True(t, s.HasRoles())

	var nilSnapshot *profile.Snapshot
	require.False(t, nilSnapshot.HasRoles())
	require.False(t, nilSnapshot.HasLocation())
}
