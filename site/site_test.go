package site

import (
	"testing"

	"github.com/gopsql/saveable"
	"github.com/gopsql/saveable/internal/fakedb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSetters(t *testing.T) {
	t.Parallel()
	r := &Role{Name: "admin"}
	r.SetTrackChanges(true)

	r.SetName("admin")
	assert.False(t, r.IsChanged(), "setting the same name is not a change")
	r.SetName("root").Set("level", 9)
	assert.Equal(t, []string{"data", "name"}, r.Changes())
	assert.Equal(t, saveable.Data{"level": 9}, r.Data)
}

func TestTemplateRoles(t *testing.T) {
	t.Parallel()
	admin := &Role{Name: "admin"}
	admin.SetId(1)
	guest := &Role{Name: "guest"}
	guest.SetId(2)

	tpl := &Template{Name: "page"}
	tpl.SetTrackChanges(true)
	assert.Nil(t, tpl.Roles())

	tpl.AddRole(admin).AddRole(2).AddRole(admin).AddRole(&Role{}).AddRole((*Role)(nil))
	assert.Equal(t, []int{1, 2}, tpl.Roles())
	assert.True(t, tpl.HasRole(guest))
	assert.True(t, tpl.IsChanged("data"))
	assert.False(t, tpl.HasRole(0))
	assert.False(t, tpl.HasRole("admin"))

	tpl.ResetTrackChanges()
	tpl.RemoveRole(3)
	assert.False(t, tpl.IsChanged(), "removing a missing role is not a change")
	tpl.RemoveRole(admin)
	assert.Equal(t, []int{2}, tpl.Roles())
	assert.True(t, tpl.IsChanged("data"))

	loaded := &Template{Data: saveable.Data{"roles": []interface{}{float64(4), float64(5)}}}
	assert.True(t, loaded.HasRole(5))
	loaded.AddRole(6)
	assert.Equal(t, []int{4, 5, 6}, loaded.Roles())

	assert.False(t, tpl.IsSystem())
	tpl.SetFlags(TemplateFlagSystem | 1)
	assert.True(t, tpl.IsSystem())
	assert.True(t, tpl.IsChanged("flags"))
}

func TestFieldLookupItems(t *testing.T) {
	t.Parallel()
	f := &Field{}
	f.SetTrackChanges(true)
	var _ HasLookupItems = f

	assert.Nil(t, f.LookupItems())
	f.AddLookupItem("red")
	f.AddLookupItem("")
	f.AddLookupItem("green")
	f.AddLookupItem("red")
	assert.Equal(t, []string{"red", "green"}, f.LookupItems())
	assert.Equal(t, []string{"data"}, f.Changes())

	f.SetType("select").SetName("color").SetLabel("Color").SetFlags(FieldFlagGlobal)
	assert.Equal(t, []string{"data", "flags", "label", "name", "type"}, f.Changes())

	loaded := &Field{Data: saveable.Data{"lookup": []interface{}{"a", 1, "b"}}}
	assert.Equal(t, []string{"a", "b"}, loaded.LookupItems())
}

func TestSite(t *testing.T) {
	t.Parallel()
	s := New()
	assert.Equal(t, []string{"fields", "roles", "templates"}, s.Kinds())

	items, ok := s.Items("templates")
	require.True(t, ok)
	assert.Same(t, s.Templates.Items, items)
	_, ok = s.Items("pages")
	assert.False(t, ok)

	assert.Equal(t, "name", s.Roles.Sort())
	assert.Equal(t, "name", s.Templates.Sort())
	assert.Equal(t, "", s.Fields.Sort())
	assert.Equal(t, "id", NewRoles(saveable.WithSort("id")).Sort(), "options override defaults")
}

func TestRolesDAO(t *testing.T) {
	t.Parallel()
	conn := fakedb.New()
	roles := NewRoles(conn)
	conn.AddRows([]string{"id", "name", "data"},
		[]interface{}{int64(1), "admin", `{"level":9}`},
		[]interface{}{int64(2), "guest", ""},
	)

	_, err := roles.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, "SELECT roles.id, roles.name, roles.data FROM roles ORDER BY name", conn.Last())

	admin, ok := roles.Role("admin")
	require.True(t, ok)
	assert.Equal(t, 1, admin.Id)
	guest, ok := roles.Role(2)
	require.True(t, ok)
	assert.Equal(t, "guest", guest.Name)
	_, ok = roles.Role("nobody")
	assert.False(t, ok)

	admin.Set("level", nil).Set("note", "x")
	require.NoError(t, roles.Save(admin))
	assert.Equal(t, `UPDATE roles SET name = 'admin', data = '{"note":"x"}' WHERE id = 1`, conn.Last())
	assert.False(t, admin.IsChanged())

	editor := roles.NewRole("editor")
	conn.AddRows([]string{"id"}, []interface{}{int64(3)})
	require.NoError(t, roles.Save(editor))
	assert.Equal(t, `INSERT INTO roles (name, data) VALUES ('editor', '{}') RETURNING id`, conn.Last())
	got, ok := roles.Role(3)
	require.True(t, ok)
	assert.Same(t, editor, got)

	ok, err = roles.Delete(guest)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "DELETE FROM roles WHERE id = 2", conn.Last())
	assert.Equal(t, []string{"admin", "editor"}, roleNames(roles.MustFind("sort=name")))

	assert.Error(t, roles.Save(&Template{}))
}

func TestTemplatesDAO(t *testing.T) {
	t.Parallel()
	conn := fakedb.New()
	templates := NewTemplates(conn)
	conn.AddRows([]string{"id", "name", "flags", "data"},
		[]interface{}{int64(1), "article", int64(0), `{"roles":[1,2]}`},
		[]interface{}{int64(2), "home", int64(8), `{"roles":[2]}`},
		[]interface{}{int64(3), "system", int64(8), ""},
	)
	templates.MustLoadAll()

	admin := &Role{Name: "admin"}
	admin.SetId(1)
	guest := &Role{Name: "guest"}
	guest.SetId(2)

	var withGuest []string
	for _, tpl := range templates.WithRole(guest) {
		withGuest = append(withGuest, tpl.Name)
	}
	assert.Equal(t, []string{"article", "home"}, withGuest)
	assert.Len(t, templates.WithRole(admin), 1)

	home, ok := templates.Template("home")
	require.True(t, ok)
	assert.True(t, home.IsSystem())
	assert.Equal(t, 2, templates.MustFind("flags=8").Len())

	home.AddRole(admin)
	require.NoError(t, templates.Save(home))
	assert.Equal(t, `UPDATE templates SET name = 'home', flags = '8', data = '{"roles":[2,1]}' WHERE id = 2`, conn.Last())
}

func TestFieldsDAO(t *testing.T) {
	t.Parallel()
	conn := fakedb.New()
	fields := NewFields(conn)

	q, err := fields.LoadQuery("type=select, label%=col")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT fields.id, fields.type, fields.name, fields.label, fields.flags, fields.data FROM fields WHERE (type = 'select') AND (label LIKE '%col%')",
		q.String())

	conn.AddRows([]string{"id", "type", "name", "label", "flags", "data"},
		[]interface{}{int64(1), "select", "color", "Color", int64(0), `{"lookup":["red"]}`},
	)
	_, err = fields.Load(fields.GetAll(), "type=select")
	require.NoError(t, err)
	color, ok := fields.Field("color")
	require.True(t, ok)
	assert.Equal(t, []string{"red"}, color.LookupItems())

	color.AddLookupItem("it's blue")
	require.NoError(t, fields.Save(color))
	assert.Equal(t,
		`UPDATE fields SET type = 'select', name = 'color', label = 'Color', flags = '0', data = '{"lookup":["red","it''s blue"]}' WHERE id = 1`,
		conn.Last())
}

func roleNames(c *saveable.Collection) (out []string) {
	c.Each(func(item saveable.Saveable) bool {
		out = append(out, item.(*Role).Name)
		return true
	})
	return
}
