package saveable

import (
	"strings"
)

type (
	// InsertSQL represents an INSERT statement builder. Create instances
	// using Model.Insert or SQL.AsInsert.
	InsertSQL struct {
		*SQL
		changes          []Changes
		outputExpression string
	}
)

// AsInsert converts a raw SQL statement to an InsertSQL builder with the
// given changes.
func (s SQL) AsInsert(changes ...Changes) *InsertSQL {
	i := &InsertSQL{
		SQL:     &s,
		changes: changes,
	}
	i.SQL.main = i
	return i
}

// Insert creates an INSERT statement with the given changes. Later changes
// of the same column override earlier ones.
//
//	var id int
//	roles.Insert(changes).Returning("id").MustQueryRow(&id)
func (m Model) Insert(lotsOfChanges ...Changes) *InsertSQL {
	return m.NewSQL("").AsInsert(lotsOfChanges...)
}

// Returning adds a RETURNING clause to retrieve values from inserted rows.
func (s *InsertSQL) Returning(expressions ...string) *InsertSQL {
	s.outputExpression = strings.Join(expressions, ", ")
	return s
}

func (s InsertSQL) String() string {
	sql, _ := s.build()
	return sql
}

func (s InsertSQL) build() (string, error) {
	fields := []string{}
	fieldsIndex := map[string]int{}
	values := []string{}
	for _, changes := range s.changes {
		for _, change := range changes {
			value, err := s.model.literal(change.Field, change.Value)
			if err != nil {
				return "", err
			}
			if idx, ok := fieldsIndex[change.Field.ColumnName]; ok { // prevent duplication
				values[idx] = value
				continue
			}
			fieldsIndex[change.Field.ColumnName] = len(fields)
			fields = append(fields, change.Field.ColumnName)
			values = append(values, value)
		}
	}
	var sql string
	if len(fields) > 0 {
		sql = "INSERT INTO " + s.model.tableName + " (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(values, ", ") + ")"
	} else if s.sql != "" {
		sql = s.sql
	} else {
		sql = "INSERT INTO " + s.model.tableName + " DEFAULT VALUES"
	}
	if s.outputExpression != "" {
		sql += " RETURNING " + s.outputExpression
	}
	return sql, nil
}
