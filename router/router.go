// Package router is the navigation state reconciler: it converges the
// auth facade's verdict, the cached profile snapshot, the persisted
// session, and user-initiated navigation onto one authoritative current
// screen, and keeps the platform history in step with that decision.
package router

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-nav-router/config"
	"github.com/jrsteele09/go-nav-router/identity"
	"github.com/jrsteele09/go-nav-router/internal/utils"
	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/jrsteele09/go-nav-router/routes"
	"github.com/jrsteele09/go-nav-router/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Collaborators bundles the router's external dependencies.
type Collaborators struct {
	Auth     identity.Facade
	Profiles profile.Gateway
	Sessions *session.Store
}

type Router struct {
	collab  Collaborators
	history HistoryAdapter
	target  Target
	cfg     config.Config
	log     zerolog.Logger

	mu      sync.Mutex
	current routes.Screen
	stack   []routes.Screen
	params  map[string]interface{}

	roleSelectionInProgress bool

	// authVersion increments on every auth callback; a profile fetch
	// launched under an older version is stale and its result is dropped.
	authVersion   uint64
	authDelivered bool
	user          *identity.UserHandle
	snapshot      *profile.Snapshot

	pendingRewrite *time.Timer
	unsubscribe    func()
	started        bool
}

// Option modifies a Router at construction time.
type Option func(*Router)

// WithHistory attaches the platform history adapter (web targets).
func WithHistory(adapter HistoryAdapter) Option {
	return func(r *Router) {
		r.history = adapter
	}
}

func New(collab Collaborators, target Target, cfg config.Config, log zerolog.Logger, options ...Option) (*Router, error) {
	if collab.Auth == nil {
		return nil, errors.New("[router.New] Auth facade is required")
	}
	if collab.Profiles == nil {
		return nil, errors.New("[router.New] Profiles gateway is required")
	}
	if collab.Sessions == nil {
		return nil, errors.New("[router.New] Sessions store is required")
	}
	r := &Router{
		collab: collab,
		target: target,
		cfg:    cfg,
		log:    log,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Start seeds the initial route from the persisted session and subscribes
// to auth state changes. A valid stored session starts on the Loading
// pseudo-route so the landing page never flashes while restoration runs;
// anything else starts on Landing.
func (r *Router) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	initial := routes.ScreenLanding
	if r.collab.Sessions.IsSessionValid() {
		initial = routes.ScreenLoading
	}
	r.current = initial
	r.stack = []routes.Screen{initial}
	r.mu.Unlock()

	r.log.Debug().Str("route", string(initial)).Msg("router started")

	// The subscription is established outside the lock: the facade
	// delivers the initial callback synchronously and that callback
	// re-enters the router.
	unsubscribe := r.collab.Auth.OnAuthStateChange(r.onAuthChange)
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
}

// Stop unsubscribes from the auth facade and cancels any pending
// address-bar rewrite.
func (r *Router) Stop() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	if r.pendingRewrite != nil {
		r.pendingRewrite.Stop()
		r.pendingRewrite = nil
	}
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onAuthChange is the facade callback: at least once on subscribe, exactly
// once per transition after that. Later callbacks are authoritative over
// earlier ones.
func (r *Router) onAuthChange(user *identity.UserHandle) {
	r.mu.Lock()
	r.authDelivered = true
	r.authVersion++
	version := r.authVersion
	r.user = user
	if user == nil {
		r.snapshot = nil
	}
	r.mu.Unlock()

	if user == nil {
		// Signed out (or never signed in): the local records go too.
		r.collab.Sessions.ClearSession()
	} else {
		r.collab.Sessions.SaveSession(session.Patch{IsAuthenticated: utils.Ptr(true)})
		go r.fetchProfile(version)
	}
	r.Reconcile()
}

// fetchProfile loads the profile for the auth state identified by version.
// A failure leaves the snapshot nil; the next relevant trigger retries.
// A result arriving after another auth transition is stale and dropped.
func (r *Router) fetchProfile(version uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ProfileFetchTimeout)
	defer cancel()

	snapshot, err := r.collab.Profiles.FetchMyProfile(ctx)

	r.mu.Lock()
	if r.authVersion != version {
		r.mu.Unlock()
		r.log.Debug().Uint64("version", version).Msg("dropping stale profile fetch result")
		return
	}
	if err != nil {
		r.snapshot = nil
		r.mu.Unlock()
		r.log.Warn().Err(err).Msg("profile fetch failed, proceeding without profile")
		r.Reconcile()
		return
	}
	r.snapshot = snapshot
	r.mu.Unlock()
	r.Reconcile()
}

// RefreshProfile re-fetches the profile snapshot outside an auth
// transition, e.g. after an onboarding step upserts profile data. No-op
// while signed out.
func (r *Router) RefreshProfile() {
	r.mu.Lock()
	version := r.authVersion
	user := r.user
	r.mu.Unlock()
	if user == nil {
		return
	}
	go r.fetchProfile(version)
}

// Reconcile recomputes the authoritative route and corrects the displayed
// one when they differ. Safe to call repeatedly and redundantly; it never
// fails and issues no redundant history writes.
func (r *Router) Reconcile() routes.Screen {
	r.mu.Lock()
	rc := r.contextLocked()
	target, ruleName := correctRoute(rc)
	if target == r.current {
		r.mu.Unlock()
		return target
	}

	r.log.Debug().
		Str("from", string(rc.current)).
		Str("to", string(target)).
		Str("rule", ruleName).
		Msg("route reconciled")

	cameFromLoading := r.current == routes.ScreenLoading
	r.current = target
	if n := len(r.stack); n > 0 {
		r.stack[n-1] = target
	} else {
		r.stack = []routes.Screen{target}
	}

	// The visible URL lags the in-memory route by the debounce so bursts
	// of triggers collapse into one rewrite. Skipped while the target is
	// the Loading pseudo-route or while a restore is still resolving out
	// of it into onboarding.
	skipRewrite := target == routes.ScreenLoading ||
		(cameFromLoading && !rc.onboardingComplete)
	if !skipRewrite {
		r.scheduleRewriteLocked()
	}
	r.mu.Unlock()
	return target
}

// contextLocked assembles the rule inputs. Caller holds r.mu.
func (r *Router) contextLocked() *ruleContext {
	return &ruleContext{
		current:                 r.current,
		authDelivered:           r.authDelivered,
		user:                    r.user,
		snapshot:                r.snapshot,
		roleSelectionInProgress: r.roleSelectionInProgress,
		continueOnboarding:      r.collab.Sessions.ShouldContinueOnboarding(),
		nextOnboarding:          r.collab.Sessions.GetNextOnboardingStep(),
		onboardingComplete:      r.snapshot.OnboardingComplete(r.log),
	}
}

func (r *Router) scheduleRewriteLocked() {
	if r.history == nil {
		return
	}
	if r.pendingRewrite != nil {
		r.pendingRewrite.Stop()
	}
	r.pendingRewrite = time.AfterFunc(r.cfg.RedirectDebounce, func() {
		r.mu.Lock()
		path := PathFor(r.current, r.params)
		r.pendingRewrite = nil
		r.mu.Unlock()
		r.history.Replace(path)
	})
}

// Navigate is a user-initiated move to route: pushes history, persists the
// route for resumption when it is a resumable screen, then lets the
// reconciler veto.
func (r *Router) Navigate(route routes.Screen, params map[string]interface{}) {
	r.mu.Lock()
	r.current = route
	r.stack = append(r.stack, route)
	r.params = params
	r.mu.Unlock()

	if routes.IsResumable(route) {
		r.collab.Sessions.SaveRoute(route, params)
		r.collab.Sessions.SaveSession(session.Patch{
			LastRoute:       &route,
			LastRouteParams: params,
		})
	}
	if r.history != nil {
		r.history.Push(PathFor(route, params))
	}
	r.Reconcile()
}

// NavigateAfterSave races save against the configured timeout and then
// navigates no matter how the race came out. Navigation is the priority: a
// slow network must not pin the user to the screen they are leaving.
func (r *Router) NavigateAfterSave(ctx context.Context, route routes.Screen, params map[string]interface{}, save func(context.Context) error) {
	saveCtx, cancel := context.WithTimeout(ctx, r.cfg.SaveTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- save(saveCtx)
	}()
	select {
	case err := <-done:
		if err != nil {
			r.log.Warn().Err(err).Str("route", string(route)).Msg("save before navigate failed")
		}
	case <-saveCtx.Done():
		r.log.Warn().Str("route", string(route)).Msg("save before navigate timed out, navigating anyway")
	}
	r.Navigate(route, params)
}

// GoBack retreats one step. On web the browser owns history: the call
// delegates to the platform and the router catches up on the resulting
// pop via HandlePop. Native targets pop the in-memory stack directly and
// drop any in-flight params.
func (r *Router) GoBack() {
	if r.target == TargetWeb && r.history != nil {
		r.history.Back()
		return
	}

	r.mu.Lock()
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
		r.current = r.stack[len(r.stack)-1]
	}
	r.params = nil
	r.mu.Unlock()
	r.Reconcile()
}

// HandlePop ingests a platform pop event (browser back/forward). The
// router's notion of history stays subordinate to the browser's.
func (r *Router) HandlePop(route routes.Screen, params map[string]interface{}) {
	r.mu.Lock()
	if n := len(r.stack); n >= 2 && r.stack[n-2] == route {
		r.stack = r.stack[:n-1]
	} else if n := len(r.stack); n > 0 {
		r.stack[n-1] = route
	} else {
		r.stack = []routes.Screen{route}
	}
	r.current = route
	r.params = params
	r.mu.Unlock()
	r.Reconcile()
}

// SignOut performs the best-effort dual cleanup: the provider call may
// fail, the local session is cleared regardless.
func (r *Router) SignOut(ctx context.Context) {
	if err := r.collab.Auth.SignOut(ctx); err != nil {
		r.log.Warn().Err(err).Msg("provider sign-out failed, clearing local session anyway")
	}
	r.collab.Sessions.ClearSession()
	r.Reconcile()
}

// CurrentRoute returns the authoritative current screen.
func (r *Router) CurrentRoute() routes.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Params returns the in-flight navigation params.
func (r *Router) Params() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// RouteHistory returns a copy of the in-memory history, most recent last.
func (r *Router) RouteHistory() []routes.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]routes.Screen, len(r.stack))
	copy(copied, r.stack)
	return copied
}

// IsRoleSelectionInProgress reports the transient suppressor flag.
func (r *Router) IsRoleSelectionInProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roleSelectionInProgress
}

// SetRoleSelectionInProgress toggles the suppressor. While set, the
// reconciler returns the current route unchanged.
func (r *Router) SetRoleSelectionInProgress(inProgress bool) {
	r.mu.Lock()
	r.roleSelectionInProgress = inProgress
	r.mu.Unlock()
	if !inProgress {
		r.Reconcile()
	}
}
