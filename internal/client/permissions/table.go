package permissions

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps role names to permission sets. It is immutable once built.
type Table struct {
	roles map[string]map[Permission]struct{}
}

// NewTable builds a Table. Role names are matched after trimming spaces.
func NewTable(roles map[string][]Permission) *Table {
	t := &Table{roles: make(map[string]map[Permission]struct{}, len(roles))}
	for name, perms := range roles {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t.roles[strings.TrimSpace(name)] = set
	}
	return t
}

func (t *Table) lookup(role string) (map[Permission]struct{}, bool) {
	if t == nil {
		return nil, false
	}
	perms, ok := t.roles[strings.TrimSpace(role)]
	return perms, ok
}

// Roles returns the known role names, sorted.
func (t *Table) Roles() []string {
	out := make([]string, 0, len(t.roles))
	for name := range t.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var allPermissions = []Permission{
	ViewDashboard, ViewUsers, CreateUser, EditUser, DeleteUser,
	ViewRoles, CreateRole, EditRole, DeleteRole,
	ViewPermissions, AssignPermissions, ViewActivityLog,
	ManageAdmins, ManageInstructors,
	ViewClient, CreateClient, EditClient, DeleteClient,
	ViewPlan, CreatePlan, EditPlan, DeletePlan,
	ViewPromotion, CreatePromotion, EditPromotion, DeletePromotion,
	ViewEnrollment, CreateEnrollment, ViewMembership,
	ApplyPromotion, RemovePromotion,
}

// DefaultTable is the role table the console backend ships with.
func DefaultTable() *Table {
	return NewTable(map[string][]Permission{
		"Super Administrador": allPermissions,
		"SuperAdmin":          allPermissions,
		"Superadministrador":  allPermissions,
		"Administrador": {
			ViewDashboard, ViewUsers, CreateUser, EditUser, ViewRoles, ViewActivityLog,
			ManageInstructors,
			ViewClient, CreateClient, EditClient,
			ViewPlan, ViewPromotion,
			ViewEnrollment, CreateEnrollment, ViewMembership,
			ApplyPromotion, RemovePromotion,
		},
		"Instructor": {
			ViewDashboard, ViewUsers,
			ViewClient, ViewEnrollment, ViewMembership,
		},
	})
}

type tableFile struct {
	Roles map[string][]Permission `yaml:"roles"`
}

// ParseTable reads a table from YAML:
//
//	roles:
//	  Administrador: ["Ver Dashboard", "Ver Usuarios"]
//	  Instructor: ["Ver Dashboard"]
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse role table: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, errors.New("parse role table: no roles defined")
	}
	for name := range f.Roles {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("parse role table: blank role name")
		}
	}
	return NewTable(f.Roles), nil
}

// LoadTable reads a YAML role table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role table: %w", err)
	}
	return ParseTable(data)
}
