package session_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-nav-router/internal/utils"
	"github.com/jrsteele09/go-nav-router/onboarding"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/jrsteele09/go-nav-router/session"
	"github.com/jrsteele09/go-nav-router/session/memorykv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	kv    *memorykv.KV
	store *session.Store
	now   time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		kv:  memorykv.New(),
		now: time.UnixMilli(1_700_000_000_000),
	}
	f.store = session.NewStore(f.kv, "test", zerolog.Nop(), session.WithNowTime(func() time.Time {
		return f.now
	}))
	return f
}

func TestGetSessionDefaultsWhenAbsent(t *testing.T) {
	f := setupTestFixture(t)

	record := f.store.GetSession()
	require.False(t, record.IsAuthenticated)
	require.Equal(t, routes.ScreenLanding, record.LastRoute)
	require.Zero(t, record.LastActivityMillis)
}

func TestGetSessionDefaultsWhenCorrupt(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.kv.Set("test:session", []byte("{not json")))

	record := f.store.GetSession()
	require.Equal(t, session.DefaultRecord().LastRoute, record.LastRoute)
	require.False(t, record.IsAuthenticated)
}

func TestSaveSessionMergesPatch(t *testing.T) {
	f := setupTestFixture(t)

	f.store.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
	f.store.SaveSession(session.Patch{LastRoute: utils.Ptr(routes.ScreenTaskDetails)})

	record := f.store.GetSession()
	require.True(t, record.IsAuthenticated, "unpatched field must be retained")
	require.Equal(t, routes.ScreenTaskDetails, record.LastRoute)
	require.Equal(t, f.now.UnixMilli(), record.LastActivityMillis)
}

func TestLastActivityNeverMovesBackwards(t *testing.T) {
	f := setupTestFixture(t)

	f.store.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
	first := f.store.GetSession().LastActivityMillis

	f.now = f.now.Add(-time.Hour)
	f.store.SaveSession(session.Patch{LastRoute: utils.Ptr(routes.ScreenMyTasks)})

	require.Equal(t, first, f.store.GetSession().LastActivityMillis)
}

func TestIsSessionValid(t *testing.T) {
	f := setupTestFixture(t)

	// Unauthenticated is never valid.
	require.False(t, f.store.IsSessionValid())

	f.store.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
	require.True(t, f.store.IsSessionValid())

	// One second of inactivity is fine.
	f.now = f.now.Add(time.Second)
	require.True(t, f.store.IsSessionValid())

	// Just past thirty days is not.
	f.now = f.now.Add(30*24*time.Hour + time.Minute)
	require.False(t, f.store.IsSessionValid())
}

func TestClearSessionDeletesAllRecords(t *testing.T) {
	f := setupTestFixture(t)

	f.store.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
	f.store.SaveOnboardingState(onboarding.New(f.now.UnixMilli()))
	f.store.SaveRoute(routes.ScreenTaskDetails, map[string]interface{}{"taskId": "abc"})

	f.store.ClearSession()

	require.False(t, f.store.GetSession().IsAuthenticated)
	require.Nil(t, f.store.GetOnboardingState())
	require.Nil(t, f.store.GetLastRoute())
}

func TestOnboardingRoundTripNormalizes(t *testing.T) {
	f := setupTestFixture(t)

	// A record claiming completion without backing data is demoted on load.
	f.store.SaveOnboardingState(&onboarding.Progress{Step: onboarding.StepComplete})
	loaded := f.store.GetOnboardingState()
	require.NotNil(t, loaded)
	require.Equal(t, onboarding.StepLocation, loaded.Step)
}

func TestShouldContinueOnboarding(t *testing.T) {
	f := setupTestFixture(t)

	// No session, no record.
	require.False(t, f.store.ShouldContinueOnboarding())

	// Authenticated with an unfinished flow.
	f.store.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
	progress := onboarding.New(f.now.UnixMilli())
	progress.ChooseMethod(onboarding.MethodInput, f.now.UnixMilli())
	f.store.SaveOnboardingState(progress)
	require.True(t, f.store.ShouldContinueOnboarding())
	require.Equal(t, routes.ScreenLocationInput, f.store.GetNextOnboardingStep())

	// Finishing the flow stops the resumption pull, but the record stays.
	fix := &profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48}
	require.NoError(t, progress.CaptureLocation(fix, f.now.UnixMilli()))
	require.NoError(t, progress.SelectRoles([]profile.Role{profile.RoleTasker}, f.now.UnixMilli()))
	f.store.SaveOnboardingState(progress)
	require.False(t, f.store.ShouldContinueOnboarding())
	require.NotNil(t, f.store.GetOnboardingState())
}

func TestGetLastRoute(t *testing.T) {
	f := setupTestFixture(t)

	require.Nil(t, f.store.GetLastRoute())

	f.store.SaveRoute(routes.ScreenTaskDetails, map[string]interface{}{"taskId": "abc"})
	record := f.store.GetLastRoute()
	require.NotNil(t, record)
	require.Equal(t, routes.ScreenTaskDetails, record.Route)
	require.Equal(t, "abc", record.Params["taskId"])
	require.Equal(t, f.now.UnixMilli(), record.TimestampMillis)
}
