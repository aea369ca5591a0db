package client

import (
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecodeIdentity_Roles(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []models.RoleRef
	}{
		{
			name:    "roles list",
			payload: `{"id":1,"username":"ana","roles":[{"id":2,"name":"Instructor"}]}`,
			want:    []models.RoleRef{{ID: 2, Name: "Instructor"}},
		},
		{
			name:    "roles list with nombre",
			payload: `{"id":1,"username":"ana","roles":[{"id":3,"nombre":"Administrador"}]}`,
			want:    []models.RoleRef{{ID: 3, Name: "Administrador"}},
		},
		{
			name:    "blank later entries dropped",
			payload: `{"id":1,"username":"ana","roles":[{"id":2,"name":"Instructor"},{"id":1,"name":"  "}]}`,
			want:    []models.RoleRef{{ID: 2, Name: "Instructor"}},
		},
		{
			name:    "blank first entry is no role",
			payload: `{"id":1,"username":"ana","roles":[{"id":9,"nombre":""},{"id":2,"nombre":"Administrador"}]}`,
			want:    []models.RoleRef{},
		},
		{
			name:    "blank first entry ignores singular",
			payload: `{"id":1,"username":"ana","roles":[{"id":9,"name":" "}],"role":"Administrador"}`,
			want:    []models.RoleRef{},
		},
		{
			name:    "singular string role",
			payload: `{"id":1,"username":"ana","role":"Administrador"}`,
			want:    []models.RoleRef{{Name: "Administrador"}},
		},
		{
			name:    "singular object role",
			payload: `{"id":1,"username":"ana","role":{"id":5,"nombre":"Instructor"}}`,
			want:    []models.RoleRef{{ID: 5, Name: "Instructor"}},
		},
		{
			name:    "list wins over singular",
			payload: `{"id":1,"username":"ana","roles":[{"id":2,"name":"Instructor"}],"role":"Administrador"}`,
			want:    []models.RoleRef{{ID: 2, Name: "Instructor"}},
		},
		{
			name:    "empty list falls back to singular",
			payload: `{"id":1,"username":"ana","roles":[],"role":"Administrador"}`,
			want:    []models.RoleRef{{Name: "Administrador"}},
		},
		{
			name:    "null role",
			payload: `{"id":1,"username":"ana","role":null}`,
			want:    []models.RoleRef{},
		},
		{
			name:    "blank role",
			payload: `{"id":1,"username":"ana","role":"   "}`,
			want:    []models.RoleRef{},
		},
		{
			name:    "no role at all",
			payload: `{"id":1,"username":"ana"}`,
			want:    []models.RoleRef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := DecodeIdentity([]byte(tt.payload))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, id.Roles); diff != "" {
				t.Fatalf("roles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeIdentity_Fields(t *testing.T) {
	id, err := DecodeIdentity([]byte(`{
		"id": 7, "username": "ana", "email": "ana@example.com",
		"first_name": "Ana", "last_name": "Pérez", "is_superuser": true
	}`))
	require.NoError(t, err)

	want := &models.Identity{
		ID:          7,
		Username:    "ana",
		Email:       "ana@example.com",
		FirstName:   "Ana",
		LastName:    "Pérez",
		IsSuperuser: true,
		Roles:       []models.RoleRef{},
	}
	if diff := cmp.Diff(want, id); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIdentity_Malformed(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`[]`,
		`{"username":"ana"}`,
		`{"id":1}`,
		`{"id":1,"username":"  "}`,
	} {
		_, err := DecodeIdentity([]byte(payload))
		require.ErrorIs(t, err, ErrMalformedResponse, payload)
	}
}
