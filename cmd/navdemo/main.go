// Command navdemo walks the navigation core through a scripted first-run:
// fresh install, sign-in, the full onboarding flow, and the redirect home,
// logging every reconciliation decision along the way.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-nav-router/config"
	"github.com/jrsteele09/go-nav-router/identity"
	"github.com/jrsteele09/go-nav-router/identity/identityfakes"
	"github.com/jrsteele09/go-nav-router/onboarding"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/profile/gatewayfakes"
	"github.com/jrsteele09/go-nav-router/router"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/jrsteele09/go-nav-router/session"
	"github.com/jrsteele09/go-nav-router/session/memorykv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running demo: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered")
		}
	}()

	displayAppname("navdemo")

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	auth := identityfakes.NewFakeFacade()
	gateway := gatewayfakes.NewFakeGateway()
	store := session.NewStore(memorykv.New(), cfg.Namespace, log,
		session.WithMaxAge(cfg.SessionMaxAge))

	nav, err := router.New(router.Collaborators{
		Auth:     auth,
		Profiles: gateway,
		Sessions: store,
	}, router.TargetNative, cfg, log)
	if err != nil {
		return err
	}
	defer nav.Stop()

	// Fresh install: no local records, nobody signed in.
	nav.Start()
	show(log, nav, "fresh install")

	// The user signs up; the backend has an empty profile for them.
	userID := uuid.New().String()
	gateway.SetSnapshot(&profile.Snapshot{UserID: userID})
	auth.SignIn(identity.UserHandle{ID: userID, Email: "demo@example.com"})
	settle()
	show(log, nav, "signed in, empty profile")

	// Onboarding: choose a location method, capture a fix, pick roles.
	nav.Navigate(store.GetNextOnboardingStep(), nil)
	now := time.Now().UnixMilli()
	progress := onboarding.New(now)
	progress.ChooseMethod(onboarding.MethodSearch, now)
	store.SaveOnboardingState(progress)
	nav.Reconcile()
	show(log, nav, "location method chosen")

	fix := &profile.LocationFix{Kind: profile.LocationKindCoordinates, Lat: 17.38, Lng: 78.48}
	if err := progress.CaptureLocation(fix, now); err != nil {
		return err
	}
	store.SaveOnboardingState(progress)
	nav.Reconcile()
	show(log, nav, "location captured")

	nav.SetRoleSelectionInProgress(true)
	roles := []profile.Role{profile.RoleTasker}
	if err := progress.SelectRoles(roles, now); err != nil {
		return err
	}
	store.SaveOnboardingState(progress)
	if _, err := gateway.UpsertProfile(context.Background(), profile.Patch{
		Roles:    roles,
		Location: fix,
	}); err != nil {
		return err
	}
	nav.SetRoleSelectionInProgress(false)
	nav.RefreshProfile()
	settle()

	// Leaving the role screen hands control back to the reconciler, which
	// now sees a complete profile and redirects home.
	nav.Navigate(routes.ScreenOnboardingComplete, nil)
	settle()
	show(log, nav, "roles selected, onboarding complete")

	// A later launch with everything persisted goes straight home.
	nav.Navigate(routes.ScreenTaskDetails, map[string]interface{}{"taskId": uuid.New().String()})
	show(log, nav, "browsing a task")
	nav.GoBack()
	show(log, nav, "back from task")

	nav.SignOut(context.Background())
	settle()
	show(log, nav, "signed out")
	return nil
}

func show(log zerolog.Logger, nav *router.Router, label string) {
	log.Info().
		Str("route", string(nav.CurrentRoute())).
		Strs("history", screensToStrings(nav.RouteHistory())).
		Msg(label)
}

func screensToStrings(screens []routes.Screen) []string {
	out := make([]string, 0, len(screens))
	for _, s := range screens {
		out = append(out, string(s))
	}
	return out
}

// settle gives the async profile fetch a moment to land.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
