package routing

import (
	"sync"

	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
)

// Decision is the outcome of one navigation attempt.
type Decision int

const (
	// DecisionRender: the view may render.
	DecisionRender Decision = iota
	// DecisionRedirectLogin: no session; the attempted path is kept as
	// ReturnTo for after login.
	DecisionRedirectLogin
	// DecisionAccessDenied: the route's permission is missing. No redirect
	// happens; the attempted path stays the current one.
	DecisionAccessDenied
	// DecisionNoRoles: the identity has no usable role. Only logout is
	// offered, whatever the route.
	DecisionNoRoles
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect to login"
	case DecisionAccessDenied:
		return "access denied"
	case DecisionNoRoles:
		return "no roles assigned"
	default:
		return "unknown"
	}
}

// Result describes a navigation decision.
type Result struct {
	Decision Decision
	// Path is the path navigation ends on: the resolved route for render and
	// access denied, "/login" for a redirect.
	Path  string
	Route Route
	// ReturnTo is set on DecisionRedirectLogin.
	ReturnTo string
	// Missing is the permission that was required and not held.
	Missing permissions.Permission
}

// PathLogin is where unauthenticated navigation is sent.
const PathLogin = "/login"

// PermissionSource yields the permission set of the current identity.
// permissions.Resolver satisfies it.
type PermissionSource interface {
	Current() permissions.Set
}

// Guard evaluates navigation attempts against a route table.
type Guard struct {
	source   PermissionSource
	routes   map[string]Route
	fallback string

	mu       sync.Mutex
	returnTo string
}

// NewGuard builds a Guard. "/" and paths missing from routes resolve to
// fallback, which must itself be one of routes.
func NewGuard(source PermissionSource, routes []Route, fallback string) *Guard {
	g := &Guard{
		source:   source,
		routes:   make(map[string]Route, len(routes)),
		fallback: CleanPath(fallback),
	}
	for _, r := range routes {
		r.Path = CleanPath(r.Path)
		g.routes[r.Path] = r
	}
	return g
}

// NewDefaultGuard uses DefaultRoutes with /dashboard as fallback.
func NewDefaultGuard(source PermissionSource) *Guard {
	return NewGuard(source, DefaultRoutes(), PathDashboard)
}

// Resolve maps a requested path to its route.
func (g *Guard) Resolve(path string) Route {
	if r, ok := g.routes[CleanPath(path)]; ok {
		return r
	}
	return g.routes[g.fallback]
}

// Check decides one navigation attempt. It never blocks on the network.
func (g *Guard) Check(path string) Result {
	route := g.Resolve(path)
	set := g.source.Current()

	switch set.Outcome() {
	case permissions.OutcomeNoSession:
		g.mu.Lock()
		g.returnTo = route.Path
		g.mu.Unlock()
		return Result{Decision: DecisionRedirectLogin, Path: PathLogin, Route: route, ReturnTo: route.Path}
	case permissions.OutcomeNoRole, permissions.OutcomeUnknownRole:
		return Result{Decision: DecisionNoRoles, Path: route.Path, Route: route}
	}

	if route.Required != "" && !set.HasPermission(route.Required) {
		return Result{Decision: DecisionAccessDenied, Path: route.Path, Route: route, Missing: route.Required}
	}
	return Result{Decision: DecisionRender, Path: route.Path, Route: route}
}

// TakeReturnTo returns and forgets the path recorded by the last login
// redirect.
func (g *Guard) TakeReturnTo() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.returnTo
	g.returnTo = ""
	return p, p != ""
}
