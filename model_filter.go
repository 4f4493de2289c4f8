package saveable

import (
	"encoding/json"
	"io"
	"reflect"
)

type (
	// ModelWithPermittedFields wraps a Model with a whitelist of permitted
	// fields for mass assignment protection. Create instances using Permit
	// or PermitAllExcept, then use Filter or Assign to take allowed fields
	// from user input.
	ModelWithPermittedFields struct {
		*Model
		permittedFieldsIdx []int
	}
)

// Permit creates a ModelWithPermittedFields that only allows the specified
// struct fields. If no field names are provided, no fields are permitted.
func (m Model) Permit(fieldNames ...string) *ModelWithPermittedFields {
	idx := []int{}
	for i, field := range m.modelFields {
		for _, fieldName := range fieldNames {
			if fieldName != field.Name {
				continue
			}
			idx = append(idx, i)
			break
		}
	}
	return &ModelWithPermittedFields{&m, idx}
}

// PermitAllExcept creates a ModelWithPermittedFields that allows all fields
// except the specified ones. If no field names are provided, all fields are
// permitted.
//
//	roles.PermitAllExcept("Id")
func (m Model) PermitAllExcept(fieldNames ...string) *ModelWithPermittedFields {
	idx := []int{}
	for i, field := range m.modelFields {
		found := false
		for _, fieldName := range fieldNames {
			if fieldName == field.Name {
				found = true
				break
			}
		}
		if !found {
			idx = append(idx, i)
		}
	}
	return &ModelWithPermittedFields{&m, idx}
}

// PermittedFields returns the list of field names that are permitted for
// mass assignment.
func (m ModelWithPermittedFields) PermittedFields() (out []string) {
	for _, i := range m.permittedFieldsIdx {
		field := m.modelFields[i]
		out = append(out, field.Name)
	}
	return
}

// Filter extracts only permitted fields from input data. Accepts
// RawChanges, map[string]interface{}, JSON strings, []byte or io.Reader.
// Keys are column names. Values are converted to the type of the struct
// field; keys whose values cannot be converted are dropped. Later inputs
// override earlier ones.
//
//	changes := roles.Permit("Name").Filter(`{"name": "editor", "id": 9}`)
//	// [{name editor}]
func (m ModelWithPermittedFields) Filter(inputs ...interface{}) (out Changes) {
	values := map[string]interface{}{}
	for _, input := range inputs {
		in, err := rawChanges(input)
		if err != nil {
			continue
		}
		m.filterPermits(in, values)
	}
	for _, i := range m.permittedFieldsIdx {
		field := m.modelFields[i]
		if value, ok := values[field.ColumnName]; ok {
			out = append(out, Change{field, value})
		}
	}
	return
}

// MustAssign is like Assign but panics if assign operation fails.
func (m ModelWithPermittedFields) MustAssign(item interface{}, inputs ...interface{}) Changes {
	c, err := m.Assign(item, inputs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Assign is like Filter but also copies the permitted values into item,
// which must be a pointer to a struct of the model's type. Every assigned
// column is recorded with TrackChange when item implements TrackChanges.
// Malformed JSON input is returned as error.
//
//	role := roles.MakeBlankItem().(*site.Role)
//	roles.Model().Permit("Name", "Data").Assign(role, os.Stdin)
func (m ModelWithPermittedFields) Assign(item interface{}, inputs ...interface{}) (Changes, error) {
	rv := reflect.ValueOf(item)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, ErrMustBePointer
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil, ErrMustBePointer
	}
	decoded := make([]interface{}, 0, len(inputs))
	for _, input := range inputs {
		in, err := rawChanges(input)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, in)
	}
	changes := m.Filter(decoded...)
	tracker, _ := item.(TrackChanges)
	for _, change := range changes {
		target := reflect.ValueOf(change.Field.getFieldValueAddrFromStruct(rv)).Elem()
		if value := reflect.ValueOf(change.Value); value.IsValid() {
			target.Set(value)
		} else {
			target.Set(reflect.Zero(target.Type()))
		}
		if tracker != nil {
			tracker.TrackChange(change.Field.ColumnName)
		}
	}
	return changes, nil
}

func (m ModelWithPermittedFields) filterPermits(in RawChanges, out map[string]interface{}) {
	if m.structType == nil {
		return
	}
	for _, i := range m.permittedFieldsIdx {
		field := m.modelFields[i]
		if _, ok := in[field.ColumnName]; !ok {
			continue
		}
		f, ok := m.structType.FieldByName(field.Name)
		if !ok {
			continue
		}
		v, err := json.Marshal(in[field.ColumnName])
		if err != nil {
			continue
		}
		x := reflect.New(f.Type)
		if err := json.Unmarshal(v, x.Interface()); err != nil {
			continue
		}
		out[field.ColumnName] = x.Elem().Interface()
	}
}

func rawChanges(input interface{}) (RawChanges, error) {
	var c RawChanges
	switch in := input.(type) {
	case RawChanges:
		return in, nil
	case map[string]interface{}:
		return RawChanges(in), nil
	case string:
		err := json.Unmarshal([]byte(in), &c)
		return c, err
	case []byte:
		err := json.Unmarshal(in, &c)
		return c, err
	case io.Reader:
		err := json.NewDecoder(in).Decode(&c)
		return c, err
	}
	return nil, &json.UnsupportedTypeError{Type: reflect.TypeOf(input)}
}
