package saveable

import (
	"sort"
	"strconv"
)

type (
	// Collection is an ordered set of items, unique by identity. Items
	// with id 0 are all distinct even though their ids are equal. A
	// Collection is not safe for concurrent use.
	Collection struct {
		Tracker
		model *Model
		items []Saveable
	}
)

var _ TrackChanges = (*Collection)(nil)

// NewCollection creates an empty collection. The model is used to read
// item fields in Find; it may be nil, then it is derived from the first
// item when needed.
func NewCollection(model *Model, items ...Saveable) *Collection {
	c := &Collection{model: model}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add appends item unless the same item is already in the collection.
// Adding is recorded as change "items" while tracking is on.
func (c *Collection) Add(item Saveable) *Collection {
	if item == nil || c.Has(item) {
		return c
	}
	c.items = append(c.items, item)
	c.TrackChange("items")
	return c
}

// Remove removes item and reports whether it was in the collection.
func (c *Collection) Remove(item Saveable) bool {
	i := c.IndexOf(item)
	if i == -1 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.TrackChange("items")
	return true
}

// insertAt puts item back at position i, used to undo Remove.
func (c *Collection) insertAt(i int, item Saveable) {
	if c.Has(item) {
		return
	}
	if i < 0 || i > len(c.items) {
		i = len(c.items)
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = item
}

// IndexOf returns the position of item, or -1.
func (c *Collection) IndexOf(item Saveable) int {
	for i, x := range c.items {
		if x == item {
			return i
		}
	}
	return -1
}

// Has reports whether this exact item is in the collection.
func (c *Collection) Has(item Saveable) bool {
	return c.IndexOf(item) != -1
}

func (c *Collection) Len() int {
	return len(c.items)
}

// Index returns the item at position i, nil if out of range.
func (c *Collection) Index(i int) Saveable {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// Items returns a copy of the items in order.
func (c *Collection) Items() []Saveable {
	return append([]Saveable{}, c.items...)
}

// Each calls fn for every item in order until fn returns false.
func (c *Collection) Each(fn func(Saveable) bool) {
	for _, item := range c.Items() {
		if !fn(item) {
			return
		}
	}
}

// Get returns an item by key. An int key is an id, a string key is a name
// (see Named) or, when no name matches, a decimal id.
func (c *Collection) Get(key interface{}) (Saveable, bool) {
	switch k := key.(type) {
	case int:
		return c.getById(k)
	case int64:
		return c.getById(int(k))
	case string:
		for _, item := range c.items {
			if n, ok := item.(Named); ok && n.GetName() == k {
				return item, true
			}
		}
		if id, err := strconv.Atoi(k); err == nil {
			return c.getById(id)
		}
	}
	return nil, false
}

func (c *Collection) getById(id int) (Saveable, bool) {
	if id == 0 {
		return nil, false
	}
	for _, item := range c.items {
		if item.GetId() == id {
			return item, true
		}
	}
	return nil, false
}

// FindFunc returns a new collection of the items for which fn returns
// true, in order.
func (c *Collection) FindFunc(fn func(Saveable) bool) *Collection {
	out := &Collection{model: c.model}
	for _, item := range c.items {
		if fn(item) {
			out.items = append(out.items, item)
		}
	}
	return out
}

// MustFind is like Find but panics if selectors are invalid.
func (c *Collection) MustFind(selectors interface{}) *Collection {
	out, err := c.Find(selectors)
	if err != nil {
		panic(err)
	}
	return out
}

// Find returns a new collection of the items matching selectors, which
// can be a selector string or Selectors. Every operator is supported.
// Fields are column names; other names are looked up in the item's data
// mapping. Sort, limit and start selectors are applied after filtering;
// start only applies together with a non-zero limit.
//
//	roles.All().Find("name^=ad, sort=-name, limit=2")
func (c *Collection) Find(selectors interface{}) (*Collection, error) {
	ss, err := toSelectors(selectors)
	if err != nil {
		return nil, err
	}
	var sorts Selectors
	limit, start := 0, 0
	filters := Selectors{}
	for _, s := range ss {
		switch s.Kind {
		case Filter:
			filters = append(filters, s)
		case Sort:
			sorts = append(sorts, s)
		case Limit:
			if limit, err = s.Int(); err != nil {
				return nil, err
			}
		case Start:
			if start, err = s.Int(); err != nil {
				return nil, err
			}
		}
	}
	out := c.FindFunc(func(item Saveable) bool {
		for _, f := range filters {
			value, ok := c.value(item, f.Field)
			if !ok || !f.Match(value) {
				return false
			}
		}
		return true
	})
	if len(sorts) > 0 {
		sort.SliceStable(out.items, func(i, j int) bool {
			for _, s := range sorts {
				a, _ := c.value(out.items[i], s.SortField())
				b, _ := c.value(out.items[j], s.SortField())
				x, _ := toSQLString(a)
				y, _ := toSQLString(b)
				r := compare(x, y)
				if r == 0 {
					continue
				}
				if s.Descending() {
					return r > 0
				}
				return r < 0
			}
			return false
		})
	}
	if limit > 0 {
		if start > len(out.items) {
			start = len(out.items)
		}
		end := start + limit
		if end > len(out.items) {
			end = len(out.items)
		}
		out.items = out.items[start:end]
	}
	return out, nil
}

// value reads field of item: a column, or a key of the data mapping.
func (c *Collection) value(item Saveable, field string) (interface{}, bool) {
	if c.model == nil {
		c.model = NewModel(item)
	}
	if field == "id" {
		return item.GetId(), true
	}
	if value, ok := c.model.Value(item, field); ok {
		return value, true
	}
	data, ok := c.model.Value(item, dataColumn)
	if !ok {
		return nil, false
	}
	switch d := data.(type) {
	case Data:
		return d.Get(field)
	case map[string]interface{}:
		return Data(d).Get(field)
	}
	return nil, false
}
