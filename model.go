package saveable

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/gopsql/logger"
)

type (
	// Model is a database table and it is created from an item struct.
	// Table name is inferred from the name of the struct or its
	// TableName() receiver. Column names are inferred from struct field
	// names or theirs "column" tags, in snake_case by default.
	Model struct {
		connection Executor
		logger     logger.Logger
		escaper    Escaper
		structType reflect.Type
		*modelInfo
	}

	modelInfo struct {
		tableName   string
		modelFields []Field
	}

	Field struct {
		Name       string // struct field name
		ColumnName string // column name in database
		DataType   string // data type in database
		Exported   bool   // false if field name is lower case (unexported)
	}
)

const dataColumn = "data"

// Initialize a Model from a struct or a pointer to struct. For available
// options, see SetOptions().
func NewModel(object interface{}, options ...interface{}) (m *Model) {
	rt := reflect.TypeOf(object)
	if rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	m = &Model{
		modelInfo: &modelInfo{
			tableName: ToTableName(object),
		},
		structType: rt,
		escaper:    DefaultEscaper,
	}
	m.modelFields = parseStruct(rt)
	m.SetOptions(options...)
	return
}

func (m Model) String() string {
	return `model (table: "` + m.tableName + `") has ` +
		strconv.Itoa(len(m.modelFields)) + " modelFields"
}

// Table name of the Model (see ToTableName()).
func (m Model) TableName() string {
	return m.tableName
}

// Type name of the Model.
func (m Model) TypeName() string {
	if m.structType != nil {
		return m.structType.Name()
	}
	return ""
}

// Fields returns the persisted fields in declaration order.
func (m Model) Fields() []Field {
	return append([]Field{}, m.modelFields...)
}

// Columns returns the persisted column names in declaration order.
func (m Model) Columns() (out []string) {
	for _, f := range m.modelFields {
		out = append(out, f.ColumnName)
	}
	return
}

// HasColumn reports whether column is one of the persisted columns.
func (m Model) HasColumn(column string) bool {
	return m.FieldByColumn(column) != nil
}

// Get field by column name, nil will be returned if no such field.
func (m Model) FieldByColumn(column string) *Field {
	for _, f := range m.modelFields {
		if f.ColumnName == column {
			return &f
		}
	}
	return nil
}

// Get field by struct field name, nil will be returned if no such field.
func (m Model) FieldByName(name string) *Field {
	for _, f := range m.modelFields {
		if f.Name == name {
			return &f
		}
	}
	return nil
}

// Generate CREATE TABLE SQL statement from a Model. The "id" column
// becomes SERIAL PRIMARY KEY and the "data" column text holding JSON. Use
// "dataType" tag to customize the data type of other columns.
//
//	saveable.NewModel(&site.Role{}).Schema()
//	// CREATE TABLE roles (
//	//         id SERIAL PRIMARY KEY,
//	//         name text DEFAULT ''::text NOT NULL,
//	//         data text DEFAULT '{}'::text NOT NULL
//	// );
func (m Model) Schema() string {
	sql := []string{}
	for _, f := range m.modelFields {
		sql = append(sql, "\t"+f.ColumnName+" "+f.DataType)
	}
	out := "CREATE TABLE " + m.tableName + " (\n" + strings.Join(sql, ",\n") + "\n);\n"
	if m.structType != nil {
		n := reflect.New(m.structType).Interface()
		if a, ok := n.(interface{ AfterCreateSchema() string }); ok {
			out += "\n" + a.AfterCreateSchema() + "\n"
		}
	}
	return out
}

// Generate DROP TABLE ("DROP TABLE IF EXISTS <table_name>;") SQL statement from a Model.
func (m Model) DropSchema() string {
	return "DROP TABLE IF EXISTS " + m.tableName + ";\n"
}

// Clone returns a copy of the model.
func (m *Model) Clone() *Model {
	return &Model{
		connection: m.connection,
		logger:     m.logger,
		escaper:    m.escaper,
		structType: m.structType,
		modelInfo: &modelInfo{
			tableName:   m.tableName,
			modelFields: m.modelFields,
		},
	}
}

// Quiet returns a copy of the model without logger.
func (m *Model) Quiet() *Model {
	return m.Clone().SetLogger(nil)
}

// SetOptions sets database connection (see SetConnection()), logger (see
// SetLogger()) and/or escaper (see SetEscaper()). Other values are
// ignored.
func (m *Model) SetOptions(options ...interface{}) *Model {
	for _, option := range options {
		switch o := option.(type) {
		case Executor:
			m.SetConnection(o)
		case logger.Logger:
			m.SetLogger(o)
		case Escaper:
			m.SetEscaper(o)
		}
	}
	return m
}

// Return database connection for the Model.
func (m *Model) Connection() Executor {
	return m.connection
}

// Set a database connection for the Model. Any db.DB from
// github.com/gopsql/db can be used. ErrNoConnection is returned by
// statements if no connection is set.
func (m *Model) SetConnection(conn Executor) *Model {
	m.connection = conn
	return m
}

// Set the logger for the Model. Use logger.StandardLogger if you want to
// use Go's built-in standard logging package. By default, no logger is
// used, so the SQL statements are not printed to the console.
func (m *Model) SetLogger(logger logger.Logger) *Model {
	m.logger = logger
	return m
}

// Set the Escaper used to turn values into SQL literals. Default is
// DefaultEscaper.
func (m *Model) SetEscaper(escaper Escaper) *Model {
	if escaper == nil {
		escaper = DefaultEscaper
	}
	m.escaper = escaper
	return m
}

// New returns a pointer to a new zero value of the model's struct.
func (m Model) New() interface{} {
	return reflect.New(m.structType).Interface()
}

// TableData returns the persisted fields of item and their current values,
// in column order. The "data" column value is a Data.
func (m Model) TableData(item interface{}) (out Changes) {
	rv := addressable(item)
	if rv.Kind() != reflect.Struct {
		return
	}
	for _, field := range m.modelFields {
		out = append(out, Change{field, field.valueFromStruct(rv)})
	}
	return
}

// Value returns the value of column of item.
func (m Model) Value(item interface{}, column string) (interface{}, bool) {
	field := m.FieldByColumn(column)
	if field == nil {
		return nil, false
	}
	rv := addressable(item)
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	return field.valueFromStruct(rv), true
}

// literal renders a value as SQL literal. The "data" column is encoded as
// JSON object without null values.
func (m Model) literal(field Field, value interface{}) (string, error) {
	if field.ColumnName == dataColumn {
		s, err := encodeData(value)
		if err != nil {
			return "", err
		}
		return m.escape(s), nil
	}
	s, ok := toSQLString(value)
	if !ok {
		return "NULL", nil
	}
	return m.escape(s), nil
}

func (m Model) escape(s string) string {
	if m.escaper == nil {
		return DefaultEscaper.Escape(s)
	}
	return m.escaper.Escape(s)
}

func (m Model) log(sql string) {
	if m.logger == nil {
		return
	}
	m.logger.Debug(sql)
}

func (m Model) logError(args ...interface{}) {
	if m.logger == nil {
		return
	}
	m.logger.Error(args...)
}

func encodeData(value interface{}) (string, error) {
	var data Data
	switch v := value.(type) {
	case Data:
		data = v
	case map[string]interface{}:
		data = Data(v)
	case nil:
	default:
		return "", &json.UnsupportedTypeError{Type: reflect.TypeOf(value)}
	}
	j, err := json.Marshal(data.withoutNulls())
	if err != nil {
		return "", err
	}
	return string(j), nil
}

// parseStruct collects column names of a struct, fields of embedded
// structs first
func parseStruct(rt reflect.Type) (fields []Field) {
	if rt == nil {
		return
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous {
			fields = append(fields, parseStruct(f.Type)...)
			continue
		}

		columnName := f.Tag.Get("column")
		if columnName == "-" {
			continue
		}
		if idx := strings.Index(columnName, ","); idx != -1 {
			columnName = columnName[:idx]
		}
		if columnName == "" {
			if f.PkgPath != "" {
				continue // ignore unexported field if no column specified
			}
			columnName = ToColumnName(f.Name)
		}

		dataType := f.Tag.Get("dataType")
		if dataType == "" {
			dataType = FieldDataType(columnName, f.Type.String())
		}

		fields = append(fields, Field{
			Name:       f.Name,
			Exported:   f.PkgPath == "",
			ColumnName: columnName,
			DataType:   dataType,
		})
	}
	return
}

// addressable returns the struct value behind item, copied if item was
// passed by value.
func addressable(item interface{}) reflect.Value {
	rv := reflect.Indirect(reflect.ValueOf(item))
	if rv.IsValid() && !rv.CanAddr() {
		nv := reflect.New(rv.Type()).Elem()
		nv.Set(rv)
		rv = nv
	}
	return rv
}

func (f Field) valueFromStruct(structValue reflect.Value) interface{} {
	return reflect.ValueOf(f.getFieldValueAddrFromStruct(structValue)).Elem().Interface()
}

func (f Field) getFieldValueAddrFromStruct(structValue reflect.Value) interface{} {
	value := structValue.FieldByName(f.Name)
	if f.Exported {
		return value.Addr().Interface()
	}
	return reflect.NewAt(value.Type(), unsafe.Pointer(value.UnsafeAddr())).Interface()
}
