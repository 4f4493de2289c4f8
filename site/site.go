// Package site has the configuration items of a site: roles, templates
// and fields, each with its DAO built on saveable.Items.
package site

import (
	"sort"

	"github.com/gopsql/saveable"
)

// Site groups the DAOs sharing one connection.
type Site struct {
	Roles     *Roles
	Templates *Templates
	Fields    *Fields
}

// New creates every DAO with the same options, usually a db connection
// and a logger.
func New(options ...interface{}) *Site {
	return &Site{
		Roles:     NewRoles(options...),
		Templates: NewTemplates(options...),
		Fields:    NewFields(options...),
	}
}

// Items returns the DAO for kind, which is its table name.
func (s *Site) Items(kind string) (*saveable.Items, bool) {
	for _, items := range s.all() {
		if items.Table() == kind {
			return items, true
		}
	}
	return nil, false
}

// Kinds returns the table names of all DAOs, sorted.
func (s *Site) Kinds() (out []string) {
	for _, items := range s.all() {
		out = append(out, items.Table())
	}
	sort.Strings(out)
	return
}

func (s *Site) all() []*saveable.Items {
	return []*saveable.Items{s.Roles.Items, s.Templates.Items, s.Fields.Items}
}

func withDefaults(options []interface{}, defaults ...interface{}) []interface{} {
	return append(defaults, options...)
}

// setData changes one key of a data mapping and records a change of
// "data".
func setData(item saveable.TrackChanges, data *saveable.Data, key string, value interface{}) {
	if *data == nil {
		*data = saveable.Data{}
	}
	(*data)[key] = value
	item.TrackChange("data")
}
