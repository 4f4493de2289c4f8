package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gopsql/saveable"
	"github.com/gopsql/saveable/internal/fakedb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roleColumns = []string{"id", "name", "data"}

func run(conn *fakedb.DB, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	a := &app{}
	if conn != nil {
		a.conn = conn
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := a.execute(cmd)
	return out.String(), err
}

func TestSchema(t *testing.T) {
	out, err := run(nil, "", "schema", "roles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CREATE TABLE roles (\n\tid SERIAL PRIMARY KEY,"), out)

	out, err = run(nil, "", "schema", "templates", "--drop")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "DROP TABLE IF EXISTS templates;\n"), out)
	assert.Contains(t, out, "CREATE TABLE templates")

	_, err = run(nil, "", "schema", "pages")
	assert.EqualError(t, err, `unknown kind "pages", use one of: fields, roles, templates`)

	conn := fakedb.New()
	_, err = run(conn, "", "schema", "fields", "--drop", "--apply")
	require.NoError(t, err)
	require.Len(t, conn.Statements, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS fields;", conn.Statements[0])
	assert.True(t, strings.HasPrefix(conn.Statements[1], "CREATE TABLE fields"))
	assert.True(t, conn.Closed())
}

func TestLoadCommand(t *testing.T) {
	conn := fakedb.New()
	conn.AddRows(roleColumns, []interface{}{int64(1), "editor", `{"color":"blue"}`})

	out, err := run(conn, "", "load", "roles", "name%=edit, limit=10")
	require.NoError(t, err)
	assert.Equal(t, "SELECT roles.id, roles.name, roles.data FROM roles WHERE name LIKE '%edit%' ORDER BY name LIMIT 10", conn.Last())

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []map[string]interface{}{
		{"id": float64(1), "name": "editor", "data": map[string]interface{}{"color": "blue"}},
	}, got)

	_, err = run(fakedb.New(), "", "load", "roles", "name*=edit")
	var qe *saveable.QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestFindAndGetCommands(t *testing.T) {
	conn := fakedb.New()
	conn.AddRows(roleColumns,
		[]interface{}{int64(1), "admin", ""},
		[]interface{}{int64(2), "guest", ""},
	)
	out, err := run(conn, "", "find", "roles", "name*=GU")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "guest"`)
	assert.NotContains(t, out, "admin")

	conn = fakedb.New()
	conn.AddRows(roleColumns, []interface{}{int64(1), "admin", ""})
	out, err = run(conn, "", "get", "roles", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": 1`)

	conn = fakedb.New()
	_, err = run(conn, "", "get", "roles", "nobody")
	assert.True(t, errors.Is(err, saveable.ErrNotFound))
}

func TestSaveCommand(t *testing.T) {
	conn := fakedb.New()
	conn.AddRows([]string{"id"}, []interface{}{int64(5)})
	out, err := run(conn, "", "save", "roles", `{"id": 0, "name": "editor", "data": {"color": "blue"}}`)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO roles (name, data) VALUES ('editor', '{"color":"blue"}') RETURNING id`, conn.Last())
	assert.Contains(t, out, `"id": 5`)

	conn = fakedb.New()
	conn.AddRows(roleColumns, []interface{}{int64(5), "editor", `{"color":"blue"}`})
	_, err = run(conn, `{"id": 5, "name": "author"}`, "save", "roles")
	require.NoError(t, err)
	assert.Equal(t, `UPDATE roles SET name = 'author', data = '{"color":"blue"}' WHERE id = 5`, conn.Last())

	_, err = run(fakedb.New(), "", "save", "roles", `{"name":`)
	assert.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	conn := fakedb.New()
	conn.AddRows(roleColumns, []interface{}{int64(3), "guest", ""})
	out, err := run(conn, "", "delete", "roles", "guest")
	require.NoError(t, err)
	assert.Equal(t, "deleted guest\n", out)
	assert.Equal(t, "DELETE FROM roles WHERE id = 3", conn.Last())

	conn = fakedb.New()
	conn.AddRows(roleColumns, []interface{}{int64(3), "guest", ""})
	conn.AddError(errors.New("foreign key violation"))
	_, err = run(conn, "", "delete", "roles", "3")
	var pe *saveable.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "delete", pe.Op)
	assert.True(t, conn.Closed(), "closed after a failed command")
}

func TestCloseError(t *testing.T) {
	errClose := errors.New("connection reset")

	conn := fakedb.New()
	conn.CloseError = errClose
	conn.AddRows(roleColumns, []interface{}{int64(1), "admin", ""})
	out, err := run(conn, "", "get", "roles", "admin")
	assert.Equal(t, errClose, err)
	assert.Contains(t, out, `"name": "admin"`)

	conn = fakedb.New()
	conn.CloseError = errClose
	_, err = run(conn, "", "get", "roles", "nobody")
	assert.True(t, errors.Is(err, saveable.ErrNotFound), "the command error is reported first")
}
