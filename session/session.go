// Package session is the persistence layer for the three locally stored
// records: the session itself, onboarding progress, and the last visited
// route. Loss or corruption of any record degrades to "ask the user to log
// in again", never to a crash.
package session

import (
	"time"

	"github.com/jrsteele09/go-nav-router/routes"
)

// DefaultMaxAge is how long a session stays valid without activity.
const DefaultMaxAge = 30 * 24 * time.Hour

// Record is the persisted session: authentication flag, where the user
// last was, and when they were last active.
type Record struct {
	IsAuthenticated    bool                   `json:"is_authenticated"`
	LastRoute          routes.Screen          `json:"last_route"`
	LastRouteParams    map[string]interface{} `json:"last_route_params,omitempty"`
	LastActivityMillis int64                  `json:"last_activity_epoch_millis"`
}

// DefaultRecord is what a fresh or unrecoverable session reads as.
func DefaultRecord() Record {
	return Record{
		IsAuthenticated: false,
		LastRoute:       routes.ScreenLanding,
	}
}

// RouteRecord is the single "where to resume" entry, always overwritten.
type RouteRecord struct {
	Route           routes.Screen          `json:"route"`
	Params          map[string]interface{} `json:"params,omitempty"`
	TimestampMillis int64                  `json:"timestamp_epoch_millis"`
}

// Patch is a sparse session update; nil fields retain their stored value.
type Patch struct {
	IsAuthenticated *bool
	LastRoute       *routes.Screen
	LastRouteParams map[string]interface{}
}

// KV abstracts the local key-value backing so sessions can live in memory
// (tests, web) or in a file (native targets). Implementations must be safe
// for concurrent use.
type KV interface {
	// Get returns the stored bytes for key, or false when absent.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(key string, value []byte) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(key string) error
}
