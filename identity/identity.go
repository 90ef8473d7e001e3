// Package identity defines the contract the router holds the external
// auth provider to. The callback delivery rules are load-bearing: the
// router performs no duplicate suppression and assumes no transition is
// ever missed.
package identity

import "context"

// UserHandle identifies the currently authenticated user.
type UserHandle struct {
	ID    string
	Email string
}

// Callback receives the new auth state: a handle on sign-in, nil on
// sign-out.
type Callback func(user *UserHandle)

// Facade wraps the external identity provider.
type Facade interface {
	// CurrentUser returns a synchronous snapshot of the signed-in user, or
	// nil when signed out.
	CurrentUser() *UserHandle

	// OnAuthStateChange registers cb and returns its unsubscribe function.
	// cb fires at least once with the current state on subscribe, then
	// exactly once per subsequent sign-in or sign-out transition.
	OnAuthStateChange(cb Callback) (unsubscribe func())

	// SignOut ends the provider-side session. It may fail (network);
	// callers must clear local session state regardless of the outcome.
	SignOut(ctx context.Context) error
}
