package routing

import "github.com/dmitrijs2005/gatekeeper/internal/client/permissions"

// Requirement gates a UI element. Permission, when set, decides alone;
// otherwise every one of AllOf and at least one of AnyOf must be held. An
// empty Requirement is always met.
type Requirement struct {
	Permission permissions.Permission
	AnyOf      []permissions.Permission
	AllOf      []permissions.Permission
}

func (r Requirement) MetBy(set permissions.Set) bool {
	if r.Permission != "" {
		return set.HasPermission(r.Permission)
	}
	if len(r.AllOf) > 0 && !set.HasAllPermissions(r.AllOf...) {
		return false
	}
	if len(r.AnyOf) > 0 && !set.HasAnyPermission(r.AnyOf...) {
		return false
	}
	return true
}

// MenuEntry is one navigation link.
type MenuEntry struct {
	Label    string
	Path     string
	Requires Requirement
}

// DefaultMenu lists every route of DefaultRoutes, gated by its permission.
func DefaultMenu() []MenuEntry {
	routes := DefaultRoutes()
	entries := make([]MenuEntry, 0, len(routes))
	for _, r := range routes {
		entries = append(entries, MenuEntry{
			Label:    r.Title,
			Path:     r.Path,
			Requires: Requirement{Permission: r.Required},
		})
	}
	return entries
}

// FilterMenu keeps the entries whose requirement set meets, in order. It is
// a convenience for rendering, not an enforcement point: Guard.Check still
// decides every navigation.
func FilterMenu(entries []MenuEntry, set permissions.Set) []MenuEntry {
	out := make([]MenuEntry, 0, len(entries))
	for _, e := range entries {
		if e.Requires.MetBy(set) {
			out = append(out, e)
		}
	}
	return out
}
