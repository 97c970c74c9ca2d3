package guard

import "sort"

// Registry is the route table the client shell navigates over.
type Registry struct {
	routes map[string]Route
}

// NewRegistry creates an empty route table.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Route)}
}

// Add registers a route, replacing any previous route at the same path.
func (r *Registry) Add(route Route) {
	r.routes[route.Path] = route
}

// Get looks up the route at path.
func (r *Registry) Get(path string) (Route, bool) {
	route, ok := r.routes[path]
	return route, ok
}

// Paths returns all registered paths in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
