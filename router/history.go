package router

// Target selects between the web and native back/forward semantics.
type Target string

const (
	// TargetWeb keeps the router's history subordinate to the browser's:
	// GoBack delegates to the adapter and the router reacts to the
	// resulting pop via HandlePop.
	TargetWeb Target = "web"

	// TargetNative pops the in-memory stack directly.
	TargetNative Target = "native"
)

// HistoryAdapter is the boundary to the platform's address bar / history
// stack. On web it binds to the History API; native targets run without
// one (nil adapter).
//
// Paths are produced by PathFor and parsed back with ParsePath.
type HistoryAdapter interface {
	// Push appends a new history entry for a user-initiated navigation.
	Push(path string)

	// Replace rewrites the current entry; used for reconciler redirects so
	// corrections never pollute the back stack.
	Replace(path string)

	// Back triggers the platform's native back navigation. The resulting
	// pop event must be fed to Router.HandlePop by the host.
	Back()
}
