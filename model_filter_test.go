package saveable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermit(t *testing.T) {
	t.Parallel()
	m := NewModel(page{})

	assert.Equal(t, []string{"Title", "Sort"}, m.Permit("Sort", "Title", "Missing").PermittedFields())
	assert.Nil(t, m.Permit().PermittedFields())
	assert.Equal(t, []string{"Title", "Sort", "Hidden", "Published", "Note", "hits", "Data"},
		m.PermitAllExcept("Id").PermittedFields())
	assert.Len(t, m.PermitAllExcept().PermittedFields(), 8)
}

func TestFilter(t *testing.T) {
	t.Parallel()
	m := NewModel(page{})
	p := m.Permit("Title", "Sort", "Note", "Data")

	tests := []struct {
		name   string
		inputs []interface{}
		want   RawChanges
	}{
		{"json string", []interface{}{`{"title": "Home", "id": 9, "hidden": true}`}, RawChanges{"title": "Home"}},
		{"bytes", []interface{}{[]byte(`{"sort": 3}`)}, RawChanges{"sort": 3}},
		{"reader", []interface{}{strings.NewReader(`{"remark": "x"}`)}, RawChanges{"remark": "x"}},
		{"map", []interface{}{map[string]interface{}{"sort": float64(2)}}, RawChanges{"sort": 2}},
		{"raw changes", []interface{}{RawChanges{"title": "a"}}, RawChanges{"title": "a"}},
		{"later input wins", []interface{}{`{"title": "a"}`, `{"title": "b"}`}, RawChanges{"title": "b"}},
		{"unconvertible value is dropped", []interface{}{`{"sort": "many", "title": "a"}`}, RawChanges{"title": "a"}},
		{"struct field names are not keys", []interface{}{`{"Title": "a"}`}, RawChanges{}},
		{"malformed json is ignored", []interface{}{`{"title":`, `{"sort": 1}`}, RawChanges{"sort": 1}},
		{"unsupported input is ignored", []interface{}{42}, RawChanges{}},
		{"data", []interface{}{`{"data": {"a": 1}}`}, RawChanges{"data": Data{"a": float64(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RawChanges{}
			for _, c := range p.Filter(tt.inputs...) {
				got[c.Field.ColumnName] = c.Value
			}
			assert.Equal(t, tt.want, got)
		})
	}

	changes := p.Filter(`{"data": {}, "sort": 1, "title": "a"}`)
	assert.Equal(t, []string{"title", "sort", "data"}, changes.Columns(), "changes are in model order")
}

func TestAssign(t *testing.T) {
	t.Parallel()
	m := NewModel(role{})
	r := &role{Name: "old"}
	r.Id = 3
	r.SetTrackChanges(true)

	changes, err := m.PermitAllExcept("Id").Assign(r, `{"id": 9, "name": "new", "data": {"a": "b"}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "data"}, changes.Columns())
	assert.Equal(t, 3, r.Id)
	assert.Equal(t, "new", r.Name)
	assert.Equal(t, Data{"a": "b"}, r.Data)
	assert.Equal(t, []string{"data", "name"}, r.Changes())

	_, err = m.Permit("Name").Assign(r, strings.NewReader(`{"name": "from reader"}`))
	require.NoError(t, err)
	assert.Equal(t, "from reader", r.Name)

	_, err = m.Permit("Name").Assign(r, `{"name": null}`)
	require.NoError(t, err)
	assert.Equal(t, "", r.Name)

	_, err = m.Permit("Name").Assign(r, `{"name":`)
	assert.Error(t, err)
	_, err = m.Permit("Name").Assign(*r, `{}`)
	assert.Equal(t, ErrMustBePointer, err)
	_, err = m.Permit("Name").Assign((*role)(nil), `{}`)
	assert.Equal(t, ErrMustBePointer, err)
	assert.Panics(t, func() { m.Permit("Name").MustAssign(r, `[`) })
}
