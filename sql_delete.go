package saveable

import (
	"strings"
)

type (
	// DeleteSQL can be created with Model.NewSQL().AsDelete()
	DeleteSQL struct {
		*SQL
		sqlConditions
		outputExpression string
	}
)

// Convert SQL to DeleteSQL.
func (s SQL) AsDelete() *DeleteSQL {
	d := &DeleteSQL{
		SQL: &s,
	}
	d.SQL.main = d
	return d
}

// Delete builds a DELETE statement.
//
//	roles.Delete().Where("id = 3").MustExecute()
func (m Model) Delete() *DeleteSQL {
	return m.NewSQL("").AsDelete()
}

// Adds condition to DELETE FROM statement. The condition is used as is,
// values in it must be escaped already.
func (s *DeleteSQL) Where(condition string) *DeleteSQL {
	s.conditions = append(s.conditions, condition)
	return s
}

// WHERE adds a "column operator value" condition, escaping the value.
func (s *DeleteSQL) WHERE(column, operator, value string) *DeleteSQL {
	s.conditions = append(s.conditions, s.model.condition(column, operator, value))
	return s
}

// Adds RETURNING clause to DELETE FROM statement.
func (s *DeleteSQL) Returning(expressions ...string) *DeleteSQL {
	s.outputExpression = strings.Join(expressions, ", ")
	return s
}

func (s *DeleteSQL) String() string {
	var sql string
	if s.sql != "" {
		sql = s.sql
	} else {
		sql = "DELETE FROM " + s.model.tableName
	}
	sql += s.where()
	if s.outputExpression != "" {
		sql += " RETURNING " + s.outputExpression
	}
	return sql
}
