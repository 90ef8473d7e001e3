package gatewayfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-nav-router/profile"
)

var _ profile.Gateway = (*FakeGateway)(nil)

// FakeGateway is a scriptable in-memory profile.Gateway for tests and the
// demo harness. Set Snapshot/FetchErr to control what the next call returns.
type FakeGateway struct {
	lock       sync.Mutex
	snapshot   *profile.Snapshot
	fetchErr   error
	upsertErr  error
	fetchCalls int
	fetchGate  <-chan struct{}
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// SetSnapshot replaces the profile the fake serves.
func (g *FakeGateway) SetSnapshot(s *profile.Snapshot) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.snapshot = s
}

// SetFetchErr makes subsequent FetchMyProfile calls fail with err.
func (g *FakeGateway) SetFetchErr(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.fetchErr = err
}

// SetUpsertErr makes subsequent UpsertProfile calls fail with err.
func (g *FakeGateway) SetUpsertErr(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.upsertErr = err
}

// SetFetchGate makes FetchMyProfile block until gate is closed, simulating
// a slow network so tests can order fetch completion against other events.
func (g *FakeGateway) SetFetchGate(gate <-chan struct{}) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.fetchGate = gate
}

// FetchCalls returns how many times FetchMyProfile has been invoked.
func (g *FakeGateway) FetchCalls() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.fetchCalls
}

func (g *FakeGateway) FetchMyProfile(ctx context.Context) (*profile.Snapshot, error) {
	g.lock.Lock()
	gate := g.fetchGate
	g.lock.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	g.fetchCalls++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	if g.snapshot == nil {
		return nil, profile.ErrUnavailable
	}
	copied := *g.snapshot
	return &copied, nil
}

func (g *FakeGateway) UpsertProfile(ctx context.Context, patch profile.Patch) (*profile.Snapshot, error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.upsertErr != nil {
		return nil, g.upsertErr
	}
	if g.snapshot == nil {
		g.snapshot = &profile.Snapshot{}
	}
	if patch.Roles != nil {
		g.snapshot.Roles = patch.Roles
	}
	if patch.Location != nil {
		g.snapshot.Location = patch.Location
	}
	if patch.Onboarding != nil {
		g.snapshot.Onboarding = patch.Onboarding
	}
	copied := *g.snapshot
	return &copied, nil
}
