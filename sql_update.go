package saveable

import (
	"strings"
)

type (
	// UpdateSQL can be created with Model.NewSQL().AsUpdate()
	UpdateSQL struct {
		*SQL
		sqlConditions
		changes          []Changes
		outputExpression string
	}
)

// Convert SQL to UpdateSQL. The optional changes will be used in String().
func (s SQL) AsUpdate(changes ...Changes) *UpdateSQL {
	u := &UpdateSQL{
		SQL:     &s,
		changes: changes,
	}
	u.SQL.main = u
	return u
}

// Update builds an UPDATE statement with columns and values in the changes.
//
//	var rowsAffected int
//	roles.Update(changes).Where("id = 1").MustExecute(&rowsAffected)
func (m Model) Update(lotsOfChanges ...Changes) *UpdateSQL {
	return m.NewSQL("").AsUpdate(lotsOfChanges...)
}

// Adds RETURNING clause to UPDATE statement.
func (s *UpdateSQL) Returning(expressions ...string) *UpdateSQL {
	s.outputExpression = strings.Join(expressions, ", ")
	return s
}

// Adds condition to UPDATE statement. The condition is used as is, values
// in it must be escaped already.
func (s *UpdateSQL) Where(condition string) *UpdateSQL {
	s.conditions = append(s.conditions, condition)
	return s
}

// WHERE adds a "column operator value" condition, escaping the value.
func (s *UpdateSQL) WHERE(column, operator, value string) *UpdateSQL {
	s.conditions = append(s.conditions, s.model.condition(column, operator, value))
	return s
}

func (s *UpdateSQL) String() string {
	sql, _ := s.build()
	return sql
}

func (s *UpdateSQL) build() (string, error) {
	fields := []string{}
	fieldsIndex := map[string]int{}
	for _, changes := range s.changes {
		for _, change := range changes {
			value, err := s.model.literal(change.Field, change.Value)
			if err != nil {
				return "", err
			}
			set := change.Field.ColumnName + " = " + value
			if idx, ok := fieldsIndex[change.Field.ColumnName]; ok { // prevent duplication
				fields[idx] = set
				continue
			}
			fieldsIndex[change.Field.ColumnName] = len(fields)
			fields = append(fields, set)
		}
	}
	var sql string
	if s.sql != "" {
		sql = s.sql
	} else if len(fields) > 0 {
		sql = "UPDATE " + s.model.tableName + " SET " + strings.Join(fields, ", ")
	}
	if sql != "" {
		sql += s.where()
		if s.outputExpression != "" {
			sql += " RETURNING " + s.outputExpression
		}
	}
	return sql, nil
}
