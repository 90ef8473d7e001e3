package routes

// View is whatever the host application renders for a screen. The router
// never inspects it.
type View interface{}

// Registry maps screen names to renderable views. The view layer provides
// one; the router only ever asks it to resolve the screen it just decided
// on.
type Registry interface {
	// Resolve returns the view registered for the screen, or false when no
	// view is registered under that name.
	Resolve(screen Screen) (View, bool)
}

// StaticRegistry is a fixed name-to-view table satisfying Registry.
type StaticRegistry map[Screen]View

var _ Registry = (StaticRegistry)(nil)

func (r StaticRegistry) Resolve(screen Screen) (View, bool) {
	v, ok := r[screen]
	return v, ok
}
