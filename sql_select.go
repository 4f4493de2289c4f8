package saveable

import (
	"strconv"
	"strings"
)

type (
	// SelectSQL accumulates a SELECT statement. It can be created with
	// Model.NewSQL().AsSelect(), Model.Find() or Model.Select(). Columns,
	// FROM and conditions only accumulate; ORDER BY, LIMIT and OFFSET are
	// replaced by later calls.
	SelectSQL struct {
		*SQL
		sqlConditions
		fields  []string
		from    string
		orderBy string
		limit   string
		offset  string
	}

	sqlConditions struct {
		conditions []string
	}
)

// Convert SQL to SelectSQL. The optional fields will be used in Select().
func (s SQL) AsSelect(fields ...string) *SelectSQL {
	f := &SelectSQL{
		SQL:    &s,
		fields: fields,
	}
	f.SQL.main = f
	return f
}

func (m Model) newSelect(fields ...string) *SelectSQL {
	return m.NewSQL("").AsSelect(fields...)
}

// Create a SELECT query statement with all columns of a Model.
//
//	roles.Find(saveable.AddTableName).Where("name = 'guest'")
//	// SELECT roles.id, roles.name, roles.data FROM roles WHERE name = 'guest'
//
// You can pass options to modify Find(). For example, Find(AddTableName)
// adds table name to every field.
func (m Model) Find(options ...interface{}) *SelectSQL {
	return m.newSelect().Find(options...)
}

// Select is like Find but can choose what columns to retrieve.
func (m Model) Select(fields ...string) *SelectSQL {
	return m.newSelect(fields...)
}

// Create a SELECT query statement with all columns and condition.
func (m Model) Where(condition string) *SelectSQL {
	return m.Find().Where(condition)
}

// Create a SELECT query statement with all fields of a Model. Options can be
// funtions like AddTableName.
func (s *SelectSQL) Find(options ...interface{}) *SelectSQL {
	fields := s.model.Columns()
	for _, opts := range options {
		switch f := opts.(type) {
		case fieldsFunc:
			fields = f(fields, s.model.tableName)
		}
	}
	return s.ResetSelect(fields...)
}

// Set expressions to SELECT statement.
func (s *SelectSQL) ResetSelect(expressions ...string) *SelectSQL {
	s.fields = expressions
	return s
}

// Add expressions to SELECT statement.
func (s *SelectSQL) Select(expressions ...string) *SelectSQL {
	s.fields = append(s.fields, expressions...)
	return s
}

// Set FROM item of SELECT statement. Default is the model's table.
func (s *SelectSQL) From(item string) *SelectSQL {
	s.from = item
	return s
}

// Adds ORDER BY to SELECT statement, replacing any previous ORDER BY.
func (s *SelectSQL) OrderBy(expressions ...string) *SelectSQL {
	s.orderBy = strings.Join(expressions, ", ")
	return s
}

// Adds LIMIT to SELECT statement. Negative count removes the LIMIT.
func (s *SelectSQL) Limit(count int) *SelectSQL {
	if count < 0 {
		s.limit = ""
	} else {
		s.limit = strconv.Itoa(count)
	}
	return s
}

// Adds OFFSET to SELECT statement. Zero or negative start removes the
// OFFSET. OFFSET is only rendered together with LIMIT.
func (s *SelectSQL) Offset(start int) *SelectSQL {
	if start <= 0 {
		s.offset = ""
	} else {
		s.offset = strconv.Itoa(start)
	}
	return s
}

// Adds condition to SELECT statement. The condition is used as is, values
// in it must be escaped already.
func (s *SelectSQL) Where(condition string) *SelectSQL {
	s.conditions = append(s.conditions, condition)
	return s
}

// WHERE adds a "column operator value" condition, escaping the value with
// the model's Escaper. Operator "%=" means contains and becomes LIKE.
//
//	roles.Find().WHERE("name", "%=", "adm")
//	// SELECT id, name, data FROM roles WHERE name LIKE '%adm%'
func (s *SelectSQL) WHERE(column, operator, value string) *SelectSQL {
	s.conditions = append(s.conditions, s.model.condition(column, operator, value))
	return s
}

// Perform operations on the chain.
func (s *SelectSQL) Tap(funcs ...func(*SelectSQL) *SelectSQL) *SelectSQL {
	for i := range funcs {
		s = funcs[i](s)
	}
	return s
}

// Conditions returns the WHERE fragments in the order they were added.
func (s *SelectSQL) Conditions() []string {
	return append([]string{}, s.conditions...)
}

func (s *SelectSQL) String() string {
	var sql string
	if s.sql != "" {
		sql = s.sql
	} else {
		sql = "SELECT " + strings.Join(s.fields, ", ") + " FROM "
		if s.from != "" {
			sql += s.from
		} else {
			sql += s.model.tableName
		}
	}
	sql += s.where()
	if s.orderBy != "" {
		sql += " ORDER BY " + s.orderBy
	}
	if s.limit != "" {
		sql += " LIMIT " + s.limit
		if s.offset != "" {
			sql += " OFFSET " + s.offset
		}
	}
	return sql
}

func (m Model) condition(column, operator, value string) string {
	if operator == "%=" {
		return column + " LIKE " + m.escape(containsPattern(value))
	}
	return column + " " + operator + " " + m.escape(value)
}

func (s sqlConditions) where() string {
	return conditionsToStr(s.conditions, " WHERE ")
}

func conditionsToStr(conds []string, prefix string) (out string) {
	moreThanOne := len(conds) > 1
	for i, conf := range conds {
		if i > 0 {
			out += " AND "
		}
		if moreThanOne {
			out += "(" + conf + ")"
		} else {
			out += conf
		}
	}
	if out != "" {
		out = prefix + out
	}
	return
}
