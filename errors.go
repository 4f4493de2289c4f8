package saveable

import (
	"errors"
	"fmt"
)

var (
	ErrMustBePointer = errors.New("must be pointer")
	ErrNoConnection  = errors.New("no connection")
	ErrNotFound      = errors.New("item not found")
)

type (
	// QueryError is returned when a selector cannot be used to build a
	// query: unknown operator, unknown field or malformed directive.
	QueryError struct {
		Type     string // name of the Items, for example "Roles"
		Op       string // operation, "Load" if empty
		Field    string
		Operator string
		Value    string
		Reason   string
	}

	// TypeMismatchError is returned by Save and Delete when the item is
	// not of the type the Items was created for. No I/O happens.
	TypeMismatchError struct {
		Op       string
		Expected string
		Got      string
	}

	// PersistenceError wraps a failed statement.
	PersistenceError struct {
		Op    string
		Table string
		Err   error
	}
)

func (e *QueryError) Error() string {
	where := "selector"
	if e.Type != "" {
		op := e.Op
		if op == "" {
			op = "Load"
		}
		where = e.Type + "." + op + "()"
	}
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", where, e.Reason)
	case e.Operator != "":
		return fmt.Sprintf("operator '%s' may not be used in %s", e.Operator, where)
	default:
		return fmt.Sprintf("field '%s' is not valid for %s", e.Field, where)
	}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s(item) requires item to be of type '%s', got '%s'", e.Op, e.Expected, e.Got)
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
