package saveable

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gopsql/logger"
)

// Test structs for Model tests
type (
	role struct {
		Base
		Name string
		Data Data
	}

	page struct {
		Base
		Title     string
		Sort      int
		Hidden    bool
		Published *time.Time
		secret    string
		Skip      string `column:"-"`
		Note      string `column:"remark" dataType:"varchar(100)"`
		hits      int    `column:"hits"`
		Data      Data
	}

	noId struct {
		Name string
	}

	widget struct {
		Id   int
		Name string
	}
)

func (widget) TableName() string {
	return "gadgets"
}

func TestNewModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		object    interface{}
		table     string
		typeName  string
		columns   []string
		fieldName string
	}{
		{"embedded base", role{}, "roles", "role", []string{"id", "name", "data"}, "Name"},
		{"pointer", &role{}, "roles", "role", []string{"id", "name", "data"}, "Name"},
		{"tags and unexported", page{}, "pages", "page", []string{"id", "title", "sort", "hidden", "published", "remark", "hits", "data"}, "Note"},
		{"table name method", widget{}, "gadgets", "widget", []string{"id", "name"}, "Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(tt.object)
			if got := m.TableName(); got != tt.table {
				t.Errorf("TableName() = %q, want %q", got, tt.table)
			}
			if got := m.TypeName(); got != tt.typeName {
				t.Errorf("TypeName() = %q, want %q", got, tt.typeName)
			}
			if got := m.Columns(); !reflect.DeepEqual(got, tt.columns) {
				t.Errorf("Columns() = %v, want %v", got, tt.columns)
			}
			if m.FieldByName(tt.fieldName) == nil {
				t.Errorf("FieldByName(%q) = nil", tt.fieldName)
			}
		})
	}
}

func TestModelFields(t *testing.T) {
	t.Parallel()
	m := NewModel(page{})

	if f := m.FieldByColumn("remark"); f == nil || f.Name != "Note" || f.DataType != "varchar(100)" {
		t.Errorf("FieldByColumn(remark) = %+v", f)
	}
	if f := m.FieldByColumn("hits"); f == nil || f.Exported {
		t.Errorf("FieldByColumn(hits) = %+v, want unexported field", f)
	}
	if m.HasColumn("secret") || m.HasColumn("skip") {
		t.Error("HasColumn() reports a column that is not persisted")
	}
	if !m.HasColumn("id") {
		t.Error("HasColumn(id) = false")
	}
	if m.FieldByColumn("nope") != nil {
		t.Error("FieldByColumn(nope) != nil")
	}
	if got := NewModel(noId{}).HasColumn("id"); got {
		t.Error("HasColumn(id) = true for struct without id")
	}
	if got, want := m.String(), `model (table: "pages") has 8 modelFields`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	got := NewModel(role{}).Schema()
	want := `CREATE TABLE roles (
	id SERIAL PRIMARY KEY,
	name text DEFAULT ''::text NOT NULL,
	data text DEFAULT '{}'::text NOT NULL
);
`
	if got != want {
		t.Errorf("Schema() = %q, want %q", got, want)
	}

	got = NewModel(page{}).Schema()
	for _, line := range []string{
		"\tsort bigint DEFAULT 0 NOT NULL,",
		"\thidden boolean DEFAULT false NOT NULL,",
		"\tpublished timestamptz DEFAULT NOW(),",
		"\tremark varchar(100),",
		"\thits bigint DEFAULT 0 NOT NULL,",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("Schema() = %q, should contain %q", got, line)
		}
	}

	if got, want := NewModel(role{}).DropSchema(), "DROP TABLE IF EXISTS roles;\n"; got != want {
		t.Errorf("DropSchema() = %q, want %q", got, want)
	}
}

func (page) AfterCreateSchema() string {
	return "CREATE INDEX pages_title ON pages (title);"
}

func TestAfterCreateSchema(t *testing.T) {
	t.Parallel()
	got := NewModel(page{}).Schema()
	if !strings.HasSuffix(got, ");\n\nCREATE INDEX pages_title ON pages (title);\n") {
		t.Errorf("Schema() = %q, should end with the index", got)
	}
}

func TestTableData(t *testing.T) {
	t.Parallel()
	m := NewModel(page{})
	p := page{Title: "home", Sort: 2, secret: "x", hits: 9, Data: Data{"a": "1"}}
	p.Id = 3

	got := m.TableData(&p)
	want := []interface{}{3, "home", 2, false, (*time.Time)(nil), "", 9, Data{"a": "1"}}
	if len(got) != len(want) {
		t.Fatalf("TableData() returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i].Value, want[i]) {
			t.Errorf("TableData()[%s] = %#v, want %#v", got[i].Field.ColumnName, got[i].Value, want[i])
		}
	}

	// values work as well as pointers
	if got := m.TableData(p); len(got) != len(want) {
		t.Errorf("TableData(value) returned %d values", len(got))
	}

	if v, ok := m.Value(&p, "hits"); !ok || v != 9 {
		t.Errorf("Value(hits) = %v, %v", v, ok)
	}
	if _, ok := m.Value(&p, "secret"); ok {
		t.Error("Value(secret) found a column that is not persisted")
	}
}

func TestModelChanges(t *testing.T) {
	t.Parallel()
	m := NewModel(role{})

	changes := m.Changes(RawChanges{
		"data":  Data{"x": 1},
		"name":  "editor",
		"other": "ignored",
	})
	if got, want := changes.Columns(), []string{"name", "data"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
	if got, want := changes.Without("data").Columns(), []string{"name"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Without(data).Columns() = %v, want %v", got, want)
	}
	j, err := changes.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(j), `{"data":{"x":1},"name":"editor"}`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestModelOptions(t *testing.T) {
	t.Parallel()
	escaper := EscaperFunc(func(s string) string { return "<" + s + ">" })
	m := NewModel(role{}, escaper, logger.StandardLogger)

	if got, want := m.Find().WHERE("name", "=", "x").String(), "SELECT id, name, data FROM roles WHERE name = <x>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if m.Connection() != nil {
		t.Error("Connection() != nil")
	}
	if err := m.Find().Execute(); err != ErrNoConnection {
		t.Errorf("Execute() = %v, want ErrNoConnection", err)
	}

	quiet := m.Quiet()
	if quiet.logger != nil || m.logger == nil {
		t.Error("Quiet() should only remove the logger of the copy")
	}
	if got := m.SetEscaper(nil).Escape("a"); got != "'a'" {
		t.Errorf("Escape() = %q after SetEscaper(nil), want default escaper", got)
	}
}
