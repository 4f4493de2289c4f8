package site

import (
	"github.com/gopsql/saveable"
)

type (
	// HasRoles is implemented by items that grant access to roles.
	HasRoles interface {
		Roles() []int
	}

	// Template describes a kind of page. The ids of the roles that may
	// view pages using it are kept in the data mapping under "roles".
	Template struct {
		saveable.Base
		Name  string
		Flags int
		Data  saveable.Data
	}

	// Templates is the DAO of Template, sorted by name.
	Templates struct {
		*saveable.Items
	}
)

const (
	TemplateFlagSystem = 8
)

var _ HasRoles = (*Template)(nil)

func (t *Template) GetName() string {
	return t.Name
}

func (t *Template) SetName(name string) *Template {
	if t.Name != name {
		t.TrackChange("name")
	}
	t.Name = name
	return t
}

func (t *Template) SetFlags(flags int) *Template {
	if t.Flags != flags {
		t.TrackChange("flags")
	}
	t.Flags = flags
	return t
}

// IsSystem reports whether the system flag is set.
func (t *Template) IsSystem() bool {
	return t.Flags&TemplateFlagSystem != 0
}

// Roles returns the ids of the roles of the template.
func (t *Template) Roles() []int {
	return t.Data.Ints("roles")
}

// HasRole reports whether the role is one of the template's roles. A
// *Role or a role id can be given.
func (t *Template) HasRole(role interface{}) bool {
	id := roleId(role)
	if id == 0 {
		return false
	}
	for _, r := range t.Roles() {
		if r == id {
			return true
		}
	}
	return false
}

// AddRole adds a saved role to the template. Unsaved roles and roles
// already added are ignored.
func (t *Template) AddRole(role interface{}) *Template {
	id := roleId(role)
	if id == 0 || t.HasRole(id) {
		return t
	}
	setData(t, &t.Data, "roles", append(t.Roles(), id))
	return t
}

// RemoveRole removes a role from the template.
func (t *Template) RemoveRole(role interface{}) *Template {
	id := roleId(role)
	if !t.HasRole(id) {
		return t
	}
	ids := []int{}
	for _, r := range t.Roles() {
		if r != id {
			ids = append(ids, r)
		}
	}
	setData(t, &t.Data, "roles", ids)
	return t
}

func roleId(role interface{}) int {
	switch r := role.(type) {
	case *Role:
		if r != nil {
			return r.GetId()
		}
	case int:
		return r
	}
	return 0
}

// NewTemplates creates the templates DAO. Options are passed to
// saveable.NewItems.
func NewTemplates(options ...interface{}) *Templates {
	return &Templates{saveable.NewItems(&Template{}, withDefaults(options, saveable.WithSort("name"))...)}
}

// Template returns a loaded template by id or name.
func (templates *Templates) Template(key interface{}) (*Template, bool) {
	item, ok := templates.Get(key)
	if !ok {
		return nil, false
	}
	return item.(*Template), true
}

// WithRole returns the loaded templates granting access to the role.
func (templates *Templates) WithRole(role *Role) []*Template {
	var out []*Template
	templates.Each(func(item saveable.Saveable) bool {
		if t := item.(*Template); t.HasRole(role) {
			out = append(out, t)
		}
		return true
	})
	return out
}
