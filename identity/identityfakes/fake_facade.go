package identityfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-nav-router/identity"
)

var _ identity.Facade = (*FakeFacade)(nil)

// FakeFacade is an in-memory identity provider honouring the Facade
// delivery contract: one callback on subscribe, one per transition.
type FakeFacade struct {
	lock        sync.Mutex
	user        *identity.UserHandle
	subscribers map[string]identity.Callback
	signOutErr  error
}

func NewFakeFacade() *FakeFacade {
	return &FakeFacade{subscribers: make(map[string]identity.Callback)}
}

func (f *FakeFacade) CurrentUser() *identity.UserHandle {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.user
}

func (f *FakeFacade) OnAuthStateChange(cb identity.Callback) func() {
	f.lock.Lock()
	id := uuid.New().String()
	f.subscribers[id] = cb
	current := f.user
	f.lock.Unlock()

	// Initial delivery happens outside the lock so the callback may call
	// back into the facade.
	cb(current)

	return func() {
		f.lock.Lock()
		defer f.lock.Unlock()
		delete(f.subscribers, id)
	}
}

func (f *FakeFacade) SignOut(ctx context.Context) error {
	f.lock.Lock()
	err := f.signOutErr
	f.lock.Unlock()
	f.SetUser(nil)
	return err
}

// SetSignOutErr makes SignOut return err while still emitting the
// signed-out transition, mimicking a provider whose network call failed
// after local cleanup.
func (f *FakeFacade) SetSignOutErr(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.signOutErr = err
}

// SignIn emits a signed-in transition for the given user.
func (f *FakeFacade) SignIn(user identity.UserHandle) {
	f.SetUser(&user)
}

// SetUser replaces the current user and notifies subscribers once if the
// state actually transitioned.
func (f *FakeFacade) SetUser(user *identity.UserHandle) {
	f.lock.Lock()
	if sameUser(f.user, user) {
		f.lock.Unlock()
		return
	}
	f.user = user
	subscribers := make([]identity.Callback, 0, len(f.subscribers))
	for _, cb := range f.subscribers {
		subscribers = append(subscribers, cb)
	}
	f.lock.Unlock()

	for _, cb := range subscribers {
		cb(user)
	}
}

func sameUser(a, b *identity.UserHandle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
