// Package permissions derives what the current identity may do from a static
// role-name to permission-set table. Nothing here is cached: every query
// resolves against the identity as it is at that moment.
package permissions

import "sort"

// Permission is a permission id as used by the console backend.
type Permission string

// Console permissions.
const (
	ViewDashboard     Permission = "Ver Dashboard"
	ViewUsers         Permission = "Ver Usuarios"
	CreateUser        Permission = "Crear Usuario"
	EditUser          Permission = "Editar Usuario"
	DeleteUser        Permission = "Eliminar Usuario"
	ViewRoles         Permission = "Ver Roles"
	CreateRole        Permission = "Crear Rol"
	EditRole          Permission = "Editar Rol"
	DeleteRole        Permission = "Eliminar Rol"
	ViewPermissions   Permission = "Ver Permisos"
	AssignPermissions Permission = "Asignar Permisos"
	ViewActivityLog   Permission = "Ver Bitácora"
	ManageAdmins      Permission = "Gestionar Administradores"
	ManageInstructors Permission = "Gestionar Instructores"
)

// Client and membership module permissions.
const (
	ViewClient       Permission = "ver_cliente"
	CreateClient     Permission = "crear_cliente"
	EditClient       Permission = "editar_cliente"
	DeleteClient     Permission = "eliminar_cliente"
	ViewPlan         Permission = "ver_plan"
	CreatePlan       Permission = "crear_plan"
	EditPlan         Permission = "editar_plan"
	DeletePlan       Permission = "eliminar_plan"
	ViewPromotion    Permission = "ver_promocion"
	CreatePromotion  Permission = "crear_promocion"
	EditPromotion    Permission = "editar_promocion"
	DeletePromotion  Permission = "eliminar_promocion"
	ViewEnrollment   Permission = "ver_inscripcion"
	CreateEnrollment Permission = "crear_inscripcion"
	ViewMembership   Permission = "ver_membresia"
	ApplyPromotion   Permission = "aplicar_promocion"
	RemovePromotion  Permission = "remover_promocion"
)

// Outcome names why a Set holds what it holds.
type Outcome int

const (
	OutcomeNoSession Outcome = iota
	OutcomeSuperuser
	OutcomeNoRole
	OutcomeUnknownRole
	OutcomeGranted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoSession:
		return "no session"
	case OutcomeSuperuser:
		return "superuser"
	case OutcomeNoRole:
		return "no role assigned"
	case OutcomeUnknownRole:
		return "unknown role"
	case OutcomeGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// Set is an effective permission set. The zero value is the empty set of an
// absent session.
type Set struct {
	outcome   Outcome
	role      string
	universal bool
	perms     map[Permission]struct{}
}

func (s Set) Outcome() Outcome { return s.outcome }

// Role is the name of the role the set was derived from, if any.
func (s Set) Role() string { return s.role }

// Universal reports whether the set holds every permission.
func (s Set) Universal() bool { return s.universal }

func (s Set) HasPermission(p Permission) bool {
	if s.universal {
		return true
	}
	_, ok := s.perms[p]
	return ok
}

// HasAnyPermission is true when at least one of ps is held.
func (s Set) HasAnyPermission(ps ...Permission) bool {
	for _, p := range ps {
		if s.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions is true when every one of ps is held. Without a session
// it is false even for an empty list.
func (s Set) HasAllPermissions(ps ...Permission) bool {
	if s.outcome == OutcomeNoSession {
		return false
	}
	for _, p := range ps {
		if !s.HasPermission(p) {
			return false
		}
	}
	return true
}

// Permissions lists the explicitly held permissions, sorted. A universal set
// returns nil; check Universal first.
func (s Set) Permissions() []Permission {
	if s.universal || len(s.perms) == 0 {
		return nil
	}
	out := make([]Permission, 0, len(s.perms))
	for p := range s.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
