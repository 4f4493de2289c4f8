// Package fakedb is an in-memory stand-in for a db.DB in tests. It records
// every statement and answers with queued responses.
package fakedb

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gopsql/db"
)

var ErrClosed = errors.New("fakedb: rows closed")

type (
	// DB answers Query and Exec calls with queued responses, in order.
	// Without a queued response Query returns no rows and Exec reports
	// one affected row.
	DB struct {
		Statements []string
		responses  []response
		closed     bool

		// CloseError is returned by Close.
		CloseError error
	}

	response struct {
		columns []string
		rows    [][]interface{}
		err     error
	}

	rows struct {
		columns []string
		values  [][]interface{}
		pos     int
		closed  bool
	}

	result int64
)

func New() *DB {
	return &DB{}
}

// AddRows queues a row set for a Query call.
func (d *DB) AddRows(columns []string, values ...[]interface{}) *DB {
	d.responses = append(d.responses, response{columns: columns, rows: values})
	return d
}

// AddError queues a failure for a Query or Exec call.
func (d *DB) AddError(err error) *DB {
	d.responses = append(d.responses, response{err: err})
	return d
}

// AddResult queues a successful Exec call.
func (d *DB) AddResult() *DB {
	d.responses = append(d.responses, response{})
	return d
}

// Last returns the last statement, empty if there is none.
func (d *DB) Last() string {
	if len(d.Statements) == 0 {
		return ""
	}
	return d.Statements[len(d.Statements)-1]
}

// Reset forgets statements and queued responses.
func (d *DB) Reset() {
	d.Statements = nil
	d.responses = nil
}

func (d *DB) Close() error {
	d.closed = true
	return d.CloseError
}

func (d *DB) Closed() bool {
	return d.closed
}

func (d *DB) next(query string) response {
	d.Statements = append(d.Statements, query)
	if len(d.responses) == 0 {
		return response{}
	}
	r := d.responses[0]
	d.responses = d.responses[1:]
	return r
}

func (d *DB) Exec(query string, args ...interface{}) (db.Result, error) {
	r := d.next(query)
	if r.err != nil {
		return nil, r.err
	}
	return result(1), nil
}

func (d *DB) Query(query string, args ...interface{}) (db.Rows, error) {
	r := d.next(query)
	if r.err != nil {
		return nil, r.err
	}
	return &rows{columns: r.columns, values: r.rows, pos: -1}, nil
}

func (r result) RowsAffected() (int64, error) {
	return int64(r), nil
}

func (r *rows) Close() error {
	r.closed = true
	return nil
}

func (r *rows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *rows) Err() error {
	return nil
}

func (r *rows) Next() bool {
	if r.closed {
		return false
	}
	r.pos++
	return r.pos < len(r.values)
}

// Scan converts values the way database/sql does for the common cases:
// numbers to any numeric type, strings and []byte to string, nil to zero.
func (r *rows) Scan(dest ...interface{}) error {
	if r.closed {
		return ErrClosed
	}
	if r.pos < 0 || r.pos >= len(r.values) {
		return errors.New("fakedb: no current row")
	}
	row := r.values[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("fakedb: expected %d destination arguments in Scan, not %d", len(row), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Ptr || target.IsNil() {
			return fmt.Errorf("fakedb: destination %d is not a pointer", i)
		}
		target = target.Elem()
		value := row[i]
		if b, ok := value.([]byte); ok && target.Kind() == reflect.String {
			value = string(b)
		}
		if value == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(value)
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case v.Type().ConvertibleTo(target.Type()) && !isStringNumberMix(v.Kind(), target.Kind()):
			target.Set(v.Convert(target.Type()))
		default:
			return fmt.Errorf("fakedb: cannot scan %T into %s", row[i], target.Type())
		}
	}
	return nil
}

// isStringNumberMix prevents int to string conversion, which reflect
// allows as a rune conversion.
func isStringNumberMix(from, to reflect.Kind) bool {
	return (from == reflect.String) != (to == reflect.String)
}
