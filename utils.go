package saveable

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// DefaultColumnNamer converts struct field names to column names when
	// no "column" tag is given. Default is ToUnderscore.
	DefaultColumnNamer func(string) string = ToUnderscore

	// DefaultTableNamer converts struct names to table names when the
	// item has no "TableName() string" method. Default is
	// ToPluralUnderscore, so "Role" becomes "roles".
	DefaultTableNamer func(string) string = ToPluralUnderscore
)

// ToTableName returns table name of an item. If the item has a "TableName()
// string" receiver method, its return value is used. Otherwise the struct
// name is converted by DefaultTableNamer. If name is still empty,
// "error_no_table_name" is returned.
func ToTableName(object interface{}) (name string) {
	if o, ok := object.(interface{ TableName() string }); ok {
		name = o.TableName()
		if name != "" {
			return
		}
	}
	rt := reflect.TypeOf(object)
	if rt == nil {
		return "error_no_table_name"
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() == reflect.Struct {
		name = rt.Name()
		if DefaultTableNamer != nil {
			name = DefaultTableNamer(name)
		}
	}
	if name == "" { // anonymous struct has no name
		return "error_no_table_name"
	}
	return
}

// ToColumnName converts a struct field name to its column name using
// DefaultColumnNamer.
func ToColumnName(in string) string {
	if DefaultColumnNamer == nil {
		return in
	}
	return DefaultColumnNamer(in)
}

// Convert a word to its plural form. Add "es" for "s" or "o" ending,
// "y" ending will be replaced with "ies", for other endings, add "s".
// For example, "template" will be converted to "templates".
func ToPlural(in string) string {
	if in == "" {
		return ""
	}
	if strings.HasSuffix(in, "y") {
		return in[:len(in)-1] + "ies"
	}
	if strings.HasSuffix(in, "s") || strings.HasSuffix(in, "o") {
		return in + "es"
	}
	return in + "s"
}

// Convert a "CamelCase" word to its plural "snake_case" (underscore) form.
// For example, "FieldGroup" will be converted to "field_groups".
func ToPluralUnderscore(in string) string {
	return ToPlural(ToUnderscore(in))
}

// Convert "CamelCase" word to its "snake_case" (underscore) form. For example,
// "FullName" will be converted to "full_name".
func ToUnderscore(str string) string { // from govalidator
	var output []rune
	var segment []rune
	for _, r := range str {
		// not treat number as separate segment
		if !unicode.IsLower(r) && string(r) != "_" && !unicode.IsNumber(r) {
			output = addSegment(output, segment)
			segment = nil
		}
		segment = append(segment, unicode.ToLower(r))
	}
	output = addSegment(output, segment)
	return string(output)
}

func addSegment(inrune, segment []rune) []rune { // from govalidator
	if len(segment) == 0 {
		return inrune
	}
	if len(inrune) != 0 {
		inrune = append(inrune, '_')
	}
	inrune = append(inrune, segment...)
	return inrune
}

// FieldDataType generates PostgreSQL data type based on column name and Go
// type name. It is used by Model.Schema() unless the struct field has a
// "dataType" tag.
func FieldDataType(columnName, fieldType string) (dataType string) {
	if columnName == "id" && strings.Contains(fieldType, "int") {
		dataType = "SERIAL PRIMARY KEY"
		return
	}
	if columnName == "data" {
		dataType = "text DEFAULT '{}'::text NOT NULL"
		return
	}
	var null bool
	if strings.HasPrefix(fieldType, "*") {
		fieldType = strings.TrimPrefix(fieldType, "*")
		null = true
	}
	var defValue string
	switch fieldType {
	case "int8", "int16", "int32", "uint8", "uint16", "uint32":
		dataType = "integer"
		defValue = "0"
	case "int64", "uint64", "int", "uint":
		dataType = "bigint"
		defValue = "0"
	case "time.Time":
		dataType = "timestamptz"
		defValue = "NOW()"
	case "float32", "float64":
		dataType = "numeric(10, 2)"
		defValue = "0.0"
	case "bool":
		dataType = "boolean"
		defValue = "false"
	default:
		dataType = "text"
		defValue = "''::text"
	}
	dataType += " DEFAULT " + defValue
	if !null {
		dataType += " NOT NULL"
	}
	return
}

// toSQLString returns the string form of a scalar value as it is written
// into a statement before escaping. The second return value is false for
// nil values, which are written as NULL.
func toSQLString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return v.String(), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false
		}
		return toSQLString(rv.Elem().Interface())
	}
	return fmt.Sprint(value), true
}
