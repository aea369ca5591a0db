// Package routing decides, per navigation attempt, whether a console view
// may render, and filters the navigation menu down to what the current
// identity can open.
package routing

import (
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
)

// Console paths.
const (
	PathHome        = "/"
	PathDashboard   = "/dashboard"
	PathUsers       = "/users"
	PathRoles       = "/roles"
	PathPermissions = "/permissions"
	PathActivityLog = "/activity-log"
	PathProfile     = "/profile"
	PathClients     = "/clientes"
	PathPlans       = "/planes"
	PathPromotions  = "/promociones"
	PathMemberships = "/membresias"
	PathEnrollments = "/inscripciones"
)

// Route is a navigable view. An empty Required means any authenticated
// identity may open it.
type Route struct {
	Path     string
	Title    string
	Required permissions.Permission
}

// DefaultRoutes is the console's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathDashboard, Title: "Dashboard", Required: permissions.ViewDashboard},
		{Path: PathUsers, Title: "Usuarios", Required: permissions.ViewUsers},
		{Path: PathRoles, Title: "Roles", Required: permissions.ViewRoles},
		{Path: PathPermissions, Title: "Permisos", Required: permissions.ViewPermissions},
		{Path: PathActivityLog, Title: "Bitácora", Required: permissions.ViewActivityLog},
		{Path: PathProfile, Title: "Perfil"},
		{Path: PathClients, Title: "Clientes", Required: permissions.ViewClient},
		{Path: PathPlans, Title: "Planes", Required: permissions.ViewPlan},
		{Path: PathPromotions, Title: "Promociones", Required: permissions.ViewPromotion},
		{Path: PathMemberships, Title: "Membresías", Required: permissions.ViewMembership},
		{Path: PathEnrollments, Title: "Inscripciones", Required: permissions.ViewEnrollment},
	}
}

// CleanPath trims whitespace, the query string and trailing slashes, and
// adds the leading slash.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
