package site

import (
	"github.com/gopsql/saveable"
)

type (
	// Role is a named permission group.
	Role struct {
		saveable.Base
		Name string
		Data saveable.Data
	}

	// Roles is the DAO of Role, sorted by name.
	Roles struct {
		*saveable.Items
	}
)

func (r *Role) GetName() string {
	return r.Name
}

func (r *Role) SetName(name string) *Role {
	if r.Name != name {
		r.TrackChange("name")
	}
	r.Name = name
	return r
}

// Set stores value under key in the data mapping. A nil value removes the
// key when the role is saved.
func (r *Role) Set(key string, value interface{}) *Role {
	setData(r, &r.Data, key, value)
	return r
}

// NewRoles creates the roles DAO. Options are passed to saveable.NewItems.
func NewRoles(options ...interface{}) *Roles {
	return &Roles{saveable.NewItems(&Role{}, withDefaults(options, saveable.WithSort("name"))...)}
}

// Role returns a loaded role by id or name.
func (roles *Roles) Role(key interface{}) (*Role, bool) {
	item, ok := roles.Get(key)
	if !ok {
		return nil, false
	}
	return item.(*Role), true
}

// NewRole returns a new unsaved role.
func (roles *Roles) NewRole(name string) *Role {
	return &Role{Name: name}
}
