// Package saveable loads, saves and deletes items kept in PostgreSQL
// tables, and filters them in memory with a small selector language.
//
// # Overview
//
// An item is a struct embedding Base, which gives it an id and change
// tracking. An Items is the data access object of one item type: it maps
// the struct to a table, builds SELECT statements from selectors, writes
// items with INSERT or UPDATE, and keeps the authoritative collection of
// every item loaded with LoadAll.
//
//	type Role struct {
//		saveable.Base
//		Name string
//		Data saveable.Data
//	}
//
//	roles := saveable.NewItems(&Role{}, conn, saveable.WithSort("name"))
//	roles.MustLoadAll()
//
//	editor := &Role{Name: "editor", Data: saveable.Data{"color": "blue"}}
//	roles.MustSave(editor) // INSERT ... RETURNING id
//
//	admin, ok := roles.Get("admin")
//
// # Selectors
//
// Selectors are comma separated clauses of a field, an operator and a
// value. Values may be quoted with ' or " to contain commas.
//
//	name=admin, id>=2, label%="a, b", sort=-name, limit=10, start=20
//
// The fields sort, limit and start are directives: sort orders by a field
// (descending with a leading -), limit and start page the result. Start
// only applies together with a non-zero limit.
//
// Load turns selectors into SQL and accepts the operators = != <> < > <= >=
// and %= (contains). Find and Collection.Find filter in memory and also
// accept *= (contains), ^= (starts with), $= (ends with) and ~= (contains
// every word). A selector Load cannot use is a *QueryError, returned
// before anything runs.
//
//	roles.Load(nil, "name%=edit, sort=-name, limit=10")
//	// SELECT roles.id, roles.name, roles.data FROM roles
//	//   WHERE name LIKE '%edit%' ORDER BY name DESC LIMIT 10
//
// # Data Column
//
// A field named Data of type Data is stored as a JSON object in the
// "data" column. Null values are never written; an empty column loads as
// a nil mapping and a malformed one is logged and skipped.
//
// # Change Tracking
//
// Items and collections record which fields changed once tracking is
// enabled. Load enables tracking on everything it creates, Save resets the
// change set of the saved item.
//
//	role.SetTrackChanges(true)
//	role.TrackChange("name")
//	role.IsChanged("name") // true
//
// # Statements
//
// The underlying Model renders SELECT, INSERT, UPDATE and DELETE
// statements, escaping values with lib/pq:
//
//	roles.Model().Update(changes).Where("id = 2").MustExecute()
//
// Use Permit and Assign to take user input:
//
//	roles.Model().PermitAllExcept("Id").Assign(role, `{"name": "author"}`)
//
// # Database Drivers
//
// Any db.DB of github.com/gopsql/db can be used: github.com/gopsql/pq,
// github.com/gopsql/pgx, github.com/gopsql/gopg or database/sql with
// github.com/gopsql/standard. Package connect opens one by name.
package saveable
