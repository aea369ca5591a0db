// Package models defines client-side data models shared by the session,
// permission and routing layers.
package models

import "strings"

// RoleRef references a role known to the backend. The client does not own
// role definitions, only the name used to look up a permission set.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Identity is the authenticated user's profile as returned by the backend.
//
// Roles is the canonical representation of role membership: an ordered list
// whose first entry is the primary role. Transports normalise every other
// shape the backend has produced (a singular role string, roles with empty
// names) into this list before an Identity is built.
//
// An Identity is never mutated after it is fetched; a new login replaces it.
type Identity struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Roles       []RoleRef `json:"roles"`
	IsSuperuser bool      `json:"is_superuser"`
}

// PrimaryRole returns the first role, or false when the identity has none.
func (i *Identity) PrimaryRole() (RoleRef, bool) {
	if i == nil || len(i.Roles) == 0 {
		return RoleRef{}, false
	}
	return i.Roles[0], true
}

// DisplayName is "First Last" when both names are known, the username
// otherwise.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	first := strings.TrimSpace(i.FirstName)
	last := strings.TrimSpace(i.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	return i.Username
}

// Clone returns a deep copy so callers cannot alias the session's identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Roles = append([]RoleRef(nil), i.Roles...)
	return &c
}

// Validate reports whether the identity carries the fields every session
// needs. Transports treat a failing identity as a malformed response.
func (i *Identity) Validate() bool {
	return i != nil && i.ID > 0 && strings.TrimSpace(i.Username) != ""
}
