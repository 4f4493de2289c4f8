package saveable

type (
	// Saveable is an item that can be loaded, saved and deleted by Items.
	// Implementations must be pointers to structs, usually by embedding
	// Base.
	Saveable interface {
		GetId() int
		SetId(id int)
		TrackChanges
	}

	// Named is implemented by items that have a natural key. Collection
	// uses it to resolve string keys in Get().
	Named interface {
		GetName() string
	}

	// Base carries the surrogate id and change tracking. Embed it in item
	// structs:
	//
	//	type Role struct {
	//		saveable.Base
	//		Name string
	//		Data saveable.Data
	//	}
	Base struct {
		Id int
		Tracker
	}

	// Data is the free-form key/value mapping stored as JSON in the "data"
	// column.
	Data map[string]interface{}
)

func (b *Base) GetId() int {
	return b.Id
}

// SetId assigns the id without recording a change. Only Items should call
// it: 0 marks the item as not persisted.
func (b *Base) SetId(id int) {
	b.Id = id
}

// Get returns the value stored under key.
func (d Data) Get(key string) (value interface{}, ok bool) {
	value, ok = d[key]
	return
}

// GetString returns the value under key if it is a string.
func (d Data) GetString(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Ints returns the value under key as a slice of ints. JSON numbers decode
// as float64, both forms are accepted.
func (d Data) Ints(key string) (out []int) {
	switch v := d[key].(type) {
	case []int:
		return append(out, v...)
	case []interface{}:
		for _, x := range v {
			switch n := x.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			}
		}
	}
	return
}

// withoutNulls returns a copy of the mapping with nil values removed.
// Null is never persisted inside the data column.
func (d Data) withoutNulls() Data {
	out := Data{}
	for k, v := range d {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
