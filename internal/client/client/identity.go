package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
)

// wireRole accepts both role spellings the backend has used: {"id","name"}
// and {"id","nombre"}.
type wireRole struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Nombre string `json:"nombre"`
}

func (r wireRole) name() string {
	if n := strings.TrimSpace(r.Name); n != "" {
		return n
	}
	return strings.TrimSpace(r.Nombre)
}

type wireIdentity struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Roles       []wireRole      `json:"roles"`
	Role        json.RawMessage `json:"role"`
	IsSuperuser bool            `json:"is_superuser"`
}

// DecodeIdentity parses an identity payload and normalises role membership:
//
//   - a non-empty "roles" list wins; a blank first entry means "no role",
//     later blank entries are dropped;
//   - otherwise a singular "role" (string or role object) becomes a
//     one-element list;
//   - blank and null roles both mean "no role".
//
// Payloads that are not JSON objects or lack id/username yield
// ErrMalformedResponse.
func DecodeIdentity(data []byte) (*models.Identity, error) {
	var w wireIdentity
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: identity: %v", ErrMalformedResponse, err)
	}

	id := &models.Identity{
		ID:          w.ID,
		Username:    strings.TrimSpace(w.Username),
		Email:       w.Email,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		IsSuperuser: w.IsSuperuser,
		Roles:       []models.RoleRef{},
	}

	switch {
	case len(w.Roles) > 0 && w.Roles[0].name() == "":
		// A blank primary role is no role; later entries never move up.
	case len(w.Roles) > 0:
		for _, r := range w.Roles {
			if name := r.name(); name != "" {
				id.Roles = append(id.Roles, models.RoleRef{ID: r.ID, Name: name})
			}
		}
	default:
		if r, ok := singularRole(w.Role); ok {
			id.Roles = append(id.Roles, r)
		}
	}

	if !id.Validate() {
		return nil, fmt.Errorf("%w: identity without id or username", ErrMalformedResponse)
	}
	return id, nil
}

func singularRole(raw json.RawMessage) (models.RoleRef, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.RoleRef{}, false
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		name = strings.TrimSpace(name)
		return models.RoleRef{Name: name}, name != ""
	}

	var r wireRole
	if err := json.Unmarshal(raw, &r); err == nil {
		return models.RoleRef{ID: r.ID, Name: r.name()}, r.name() != ""
	}
	return models.RoleRef{}, false
}
