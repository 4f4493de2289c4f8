package saveable

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/gopsql/db"
)

type (
	// Executor is the part of db.DB used to run statements. Every db.DB
	// from github.com/gopsql/db (pq, pgx, gopg, standard) satisfies it.
	Executor interface {
		Exec(query string, args ...interface{}) (db.Result, error)
		Query(query string, args ...interface{}) (db.Rows, error)
	}

	// SQL can be created with Model.NewSQL()
	SQL struct {
		main interface {
			String() string
		}
		model *Model
		sql   string
	}

	fieldsFunc = func([]string, string) []string
)

// Can be used in Find(), add table name to all field names.
var AddTableName fieldsFunc = func(fields []string, tableName string) (out []string) {
	for _, field := range fields {
		if strings.Contains(field, ".") {
			out = append(out, field)
			continue
		}
		out = append(out, tableName+"."+field)
	}
	return
}

// Create new SQL with SQL statement. Values must already be escaped, see
// Model.Escape().
func (m Model) NewSQL(sql string) *SQL {
	return &SQL{
		model: &m,
		sql:   strings.TrimSpace(sql),
	}
}

// Escape returns value as a SQL literal using the model's Escaper.
func (m Model) Escape(value string) string {
	return m.escape(value)
}

func (s SQL) String() string {
	if s.main != nil {
		return s.main.String()
	}
	return s.sql
}

// statement returns the SQL to run, or the error encountered while
// building it, for example a data mapping that cannot be encoded.
func (s SQL) statement() (string, error) {
	if b, ok := s.main.(interface{ build() (string, error) }); ok {
		return b.build()
	}
	return s.String(), nil
}

// MustQuery is like Query but panics if query operation fails.
func (s SQL) MustQuery(fn func(db.Rows) error) {
	if err := s.Query(fn); err != nil {
		panic(err)
	}
}

// Query executes the statement and calls fn once for every row, after
// rows.Next() returned true. Iteration stops at the first error.
func (s SQL) Query(fn func(db.Rows) error) error {
	sqlQuery, err := s.statement()
	if err != nil {
		return err
	}
	if sqlQuery == "" {
		return nil
	}
	if s.model.connection == nil {
		return ErrNoConnection
	}
	s.log(sqlQuery)
	rows, err := s.model.connection.Query(sqlQuery)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// MustQueryRow is like QueryRow but panics if query row operation fails.
func (s SQL) MustQueryRow(dest ...interface{}) {
	if err := s.QueryRow(dest...); err != nil {
		panic(err)
	}
}

// QueryRow gets results from the first row, and put values of each column to
// corresponding dest. ErrNotFound is returned if there is no row.
//
//	var id int
//	roles.Insert(changes).Returning("id").MustQueryRow(&id)
func (s SQL) QueryRow(dest ...interface{}) error {
	found := false
	err := s.Query(func(rows db.Rows) error {
		if found {
			return nil
		}
		found = true
		return rows.Scan(dest...)
	})
	if err == nil && !found {
		err = ErrNotFound
	}
	return err
}

// MustExecute is like Execute but panics if execute operation fails.
func (s SQL) MustExecute(dest ...interface{}) {
	if err := s.Execute(dest...); err != nil {
		panic(err)
	}
}

// Execute executes a query without returning any rows by an UPDATE, INSERT, or
// DELETE. You can get number of rows affected by providing pointer of int or
// int64 to the optional dest.
func (s SQL) Execute(dest ...interface{}) error {
	sqlQuery, err := s.statement()
	if err != nil {
		return err
	}
	if sqlQuery == "" {
		return nil
	}
	if s.model.connection == nil {
		return ErrNoConnection
	}
	s.log(sqlQuery)
	return returnRowsAffected(dest)(s.model.connection.Exec(sqlQuery))
}

func (s SQL) log(sql string) {
	s.model.log(sql)
}

func returnRowsAffected(dest []interface{}) func(db.Result, error) error {
	return func(result db.Result, err error) error {
		if err != nil {
			return err
		}
		if len(dest) == 0 {
			return nil
		}
		ra, err := result.RowsAffected()
		if err != nil {
			return err
		}
		switch x := dest[0].(type) {
		case *int:
			*x = int(ra)
		case *int64:
			*x = ra
		}
		return nil
	}
}

// scan puts the current row into every field of a struct, matching columns
// by name. Unknown columns are discarded. The "data" column is decoded from
// JSON when it is not empty; a malformed value leaves the field untouched
// and is reported through badData.
func (mi *modelInfo) scan(rv reflect.Value, rows db.Rows, badData func(error)) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	dests := make([]interface{}, len(columns))
	var data *string
	var dataField *Field
	for i, column := range columns {
		if idx := strings.LastIndex(column, "."); idx != -1 {
			column = column[idx+1:]
		}
		var field *Field
		for j := range mi.modelFields {
			if mi.modelFields[j].ColumnName == column {
				field = &mi.modelFields[j]
				break
			}
		}
		switch {
		case field == nil:
			dests[i] = new(interface{})
		case column == dataColumn:
			data = new(string)
			dataField = field
			dests[i] = data
		default:
			dests[i] = field.getFieldValueAddrFromStruct(rv)
		}
	}
	if err := rows.Scan(dests...); err != nil {
		return err
	}
	if data == nil || *data == "" {
		return nil
	}
	pointer := dataField.getFieldValueAddrFromStruct(rv)
	decoded := reflect.New(reflect.TypeOf(pointer).Elem())
	if err := json.Unmarshal([]byte(*data), decoded.Interface()); err != nil {
		if badData != nil {
			badData(err)
		}
		return nil
	}
	reflect.ValueOf(pointer).Elem().Set(decoded.Elem())
	return nil
}
