package permissions

import "github.com/dmitrijs2005/gatekeeper/internal/client/models"

// Resolve derives the effective set of identity. Priority: no identity,
// superuser, no role, unknown primary role, granted. There is no fallback
// role.
func Resolve(identity *models.Identity, table *Table) Set {
	if identity == nil {
		return Set{outcome: OutcomeNoSession}
	}
	if identity.IsSuperuser {
		set := Set{outcome: OutcomeSuperuser, universal: true}
		if role, ok := identity.PrimaryRole(); ok {
			set.role = role.Name
		}
		return set
	}

	role, ok := identity.PrimaryRole()
	if !ok {
		return Set{outcome: OutcomeNoRole}
	}
	perms, ok := table.lookup(role.Name)
	if !ok {
		return Set{outcome: OutcomeUnknownRole, role: role.Name}
	}
	return Set{outcome: OutcomeGranted, role: role.Name, perms: perms}
}

// IdentitySource yields the current identity, nil without a session.
// session.Store satisfies it.
type IdentitySource interface {
	Identity() *models.Identity
}

// Resolver answers permission queries for whatever identity its source
// holds at query time.
type Resolver struct {
	source IdentitySource
	table  *Table
}

func NewResolver(source IdentitySource, table *Table) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{source: source, table: table}
}

// Current resolves the set for the identity held right now.
func (r *Resolver) Current() Set {
	return Resolve(r.source.Identity(), r.table)
}

func (r *Resolver) Outcome() Outcome {
	return r.Current().Outcome()
}

func (r *Resolver) HasPermission(p Permission) bool {
	return r.Current().HasPermission(p)
}

func (r *Resolver) HasAnyPermission(ps ...Permission) bool {
	return r.Current().HasAnyPermission(ps...)
}

func (r *Resolver) HasAllPermissions(ps ...Permission) bool {
	return r.Current().HasAllPermissions(ps...)
}
