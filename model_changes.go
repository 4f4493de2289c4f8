package saveable

import (
	"encoding/json"
)

type (
	// RawChanges is a map of column names to values, used as input to
	// Changes and Permit().Assign().
	RawChanges map[string]interface{}

	// Change is one column and the value to write into it.
	Change struct {
		Field Field
		Value interface{}
	}

	// Changes is the ordered list of column values written by Insert and
	// Update.
	Changes []Change
)

func (c Changes) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{}
	for _, change := range c {
		data[change.Field.ColumnName] = change.Value
	}
	return json.Marshal(data)
}

func (c Changes) String() string {
	j, _ := json.MarshalIndent(c, "", "  ")
	return string(j)
}

// Columns returns the column names of the changes, in order.
func (c Changes) Columns() (out []string) {
	for _, change := range c {
		out = append(out, change.Field.ColumnName)
	}
	return
}

// Without returns changes without the given columns.
func (c Changes) Without(columns ...string) (out Changes) {
outer:
	for _, change := range c {
		for _, column := range columns {
			if change.Field.ColumnName == column {
				continue outer
			}
		}
		out = append(out, change)
	}
	return
}

// Convert RawChanges to Changes in column order. Keys are column names,
// unknown keys are ignored.
//
//	m := saveable.NewModel(&site.Role{})
//	m.Changes(saveable.RawChanges{
//		"name": "editor",
//	})
func (m Model) Changes(in RawChanges) (out Changes) {
	for _, field := range m.modelFields {
		value, ok := in[field.ColumnName]
		if !ok {
			continue
		}
		out = append(out, Change{field, value})
	}
	return
}
