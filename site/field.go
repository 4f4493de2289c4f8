package site

import (
	"github.com/gopsql/saveable"
)

type (
	// HasLookupItems is implemented by items that keep a list of lookup
	// values, like the options of a select field.
	HasLookupItems interface {
		LookupItems() []string
		AddLookupItem(item string)
	}

	// Field is a custom field definition. Type names the fieldtype, the
	// lookup items are kept in the data mapping under "lookup".
	Field struct {
		saveable.Base
		Type  string
		Name  string
		Label string
		Flags int
		Data  saveable.Data
	}

	// Fields is the DAO of Field, in table order.
	Fields struct {
		*saveable.Items
	}
)

const (
	FieldFlagAutojoin = 1
	FieldFlagGlobal   = 4
	FieldFlagSystem   = 8
)

var _ HasLookupItems = (*Field)(nil)

func (f *Field) GetName() string {
	return f.Name
}

func (f *Field) SetName(name string) *Field {
	if f.Name != name {
		f.TrackChange("name")
	}
	f.Name = name
	return f
}

func (f *Field) SetType(fieldtype string) *Field {
	if f.Type != fieldtype {
		f.TrackChange("type")
	}
	f.Type = fieldtype
	return f
}

func (f *Field) SetLabel(label string) *Field {
	if f.Label != label {
		f.TrackChange("label")
	}
	f.Label = label
	return f
}

func (f *Field) SetFlags(flags int) *Field {
	if f.Flags != flags {
		f.TrackChange("flags")
	}
	f.Flags = flags
	return f
}

// Set stores value under key in the data mapping.
func (f *Field) Set(key string, value interface{}) *Field {
	setData(f, &f.Data, key, value)
	return f
}

func (f *Field) LookupItems() (out []string) {
	items, _ := f.Data["lookup"].([]interface{})
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if s, ok := f.Data["lookup"].([]string); ok {
		out = append(out, s...)
	}
	return
}

// AddLookupItem appends a lookup value. Empty and duplicate values are
// ignored.
func (f *Field) AddLookupItem(item string) {
	if item == "" {
		return
	}
	current := f.LookupItems()
	for _, s := range current {
		if s == item {
			return
		}
	}
	lookup := make([]interface{}, 0, len(current)+1)
	for _, s := range current {
		lookup = append(lookup, s)
	}
	setData(f, &f.Data, "lookup", append(lookup, item))
}

// NewFields creates the fields DAO. Options are passed to
// saveable.NewItems.
func NewFields(options ...interface{}) *Fields {
	return &Fields{saveable.NewItems(&Field{}, options...)}
}

// Field returns a loaded field by id or name.
func (fields *Fields) Field(key interface{}) (*Field, bool) {
	item, ok := fields.Get(key)
	if !ok {
		return nil, false
	}
	return item.(*Field), true
}
