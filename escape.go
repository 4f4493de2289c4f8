package saveable

import (
	"strings"

	"github.com/lib/pq"
)

type (
	// Escaper turns an arbitrary string into a complete SQL literal that
	// is safe to interpolate into a statement.
	Escaper interface {
		Escape(string) string
	}

	// EscaperFunc adapts a function to Escaper.
	EscaperFunc func(string) string

	// PostgresEscaper quotes literals the way PostgreSQL expects, using
	// E'' syntax when the value contains backslashes.
	PostgresEscaper struct{}
)

// DefaultEscaper is used by models created without an Escaper option.
var DefaultEscaper Escaper = PostgresEscaper{}

func (f EscaperFunc) Escape(s string) string {
	return f(s)
}

func (PostgresEscaper) Escape(s string) string {
	return pq.QuoteLiteral(s)
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching values that contain s.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}
