package saveable

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/gopsql/db"
)

type (
	// DAO is what every Items provides to its callers.
	DAO interface {
		Load(target *Collection, selectors interface{}) (*Collection, error)
		Save(item Saveable) error
		Delete(item Saveable) (bool, error)
		Find(selectors interface{}) (*Collection, error)
		Get(key interface{}) (Saveable, bool)
		Has(item Saveable) bool

		Table() string
		Sort() string
		MakeBlankItem() Saveable
		GetAll() *Collection
	}

	// Items loads, saves and deletes items of one type in one table and
	// keeps the authoritative collection of all of them. Items is not
	// safe for concurrent use.
	Items struct {
		model       *Model
		itemType    reflect.Type
		name        string
		sort        string
		saveItemKey func(column string) bool
		all         *Collection
		loaded      bool

		beforeSave   []func(Saveable) error
		afterSave    []func(Saveable)
		beforeDelete []func(Saveable) error
		afterDelete  []func(Saveable)
		afterLoad    []func(Saveable)
	}

	// ItemsOption configures Items, see WithTable, WithSort, WithName and
	// WithSaveItemKey.
	ItemsOption func(*Items)
)

var _ DAO = (*Items)(nil)

// WithTable overrides the table name inferred from the item type.
func WithTable(table string) ItemsOption {
	return func(items *Items) {
		items.model.tableName = table
	}
}

// WithSort sets the default ORDER BY of Load.
func WithSort(sort string) ItemsOption {
	return func(items *Items) {
		items.sort = sort
	}
}

// WithName sets the name used in error messages. Default is the plural of
// the item type name, for example "Roles".
func WithName(name string) ItemsOption {
	return func(items *Items) {
		items.name = name
	}
}

// WithSaveItemKey sets which columns Save writes. Default is every column
// except "id".
func WithSaveItemKey(fn func(column string) bool) ItemsOption {
	return func(items *Items) {
		items.saveItemKey = fn
	}
}

func defaultSaveItemKey(column string) bool {
	return column != "id"
}

// NewItems creates Items for the type of blank, which must be a non-nil
// pointer to a struct with an "id" column. Options can be ItemsOption
// values or anything Model.SetOptions accepts (db connection, logger,
// escaper).
//
//	roles := saveable.NewItems(&site.Role{}, conn, logger.StandardLogger,
//		saveable.WithSort("name"))
func NewItems(blank Saveable, options ...interface{}) *Items {
	rv := reflect.ValueOf(blank)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(ErrMustBePointer)
	}
	items := &Items{
		model:       NewModel(blank),
		itemType:    rv.Type(),
		saveItemKey: defaultSaveItemKey,
	}
	items.name = ToPlural(items.model.TypeName())
	for _, option := range options {
		if o, ok := option.(ItemsOption); ok {
			o(items)
			continue
		}
		items.model.SetOptions(option)
	}
	if !items.model.HasColumn("id") {
		panic("saveable: " + items.model.TypeName() + " has no id column")
	}
	items.all = NewCollection(items.model)
	return items
}

// Model returns the underlying model, for custom statements and mass
// assignment.
func (items *Items) Model() *Model {
	return items.model
}

// Name is the name of the Items used in error messages.
func (items *Items) Name() string {
	return items.name
}

// Table returns the table name.
func (items *Items) Table() string {
	return items.model.TableName()
}

// Sort returns the default sort column of Load, empty for none.
func (items *Items) Sort() string {
	return items.sort
}

// MakeBlankItem returns a new zero item of the Items' type.
func (items *Items) MakeBlankItem() Saveable {
	return reflect.New(items.itemType.Elem()).Interface().(Saveable)
}

// GetAll returns the authoritative collection. It is empty until LoadAll
// is called.
func (items *Items) GetAll() *Collection {
	return items.all
}

// Loaded reports whether LoadAll has filled the authoritative collection.
func (items *Items) Loaded() bool {
	return items.loaded
}

// BeforeSave adds a hook run before an item is written. A hook returning
// an error cancels the save and the error is returned by Save.
func (items *Items) BeforeSave(fn func(Saveable) error) *Items {
	items.beforeSave = append(items.beforeSave, fn)
	return items
}

// AfterSave adds a hook run after an item is written.
func (items *Items) AfterSave(fn func(Saveable)) *Items {
	items.afterSave = append(items.afterSave, fn)
	return items
}

// BeforeDelete adds a hook run before an item is deleted. A hook
// returning an error cancels the delete.
func (items *Items) BeforeDelete(fn func(Saveable) error) *Items {
	items.beforeDelete = append(items.beforeDelete, fn)
	return items
}

// AfterDelete adds a hook run after an item is deleted.
func (items *Items) AfterDelete(fn func(Saveable)) *Items {
	items.afterDelete = append(items.afterDelete, fn)
	return items
}

// AfterLoad adds a hook run for every item Load creates.
func (items *Items) AfterLoad(fn func(Saveable)) *Items {
	items.afterLoad = append(items.afterLoad, fn)
	return items
}

// MustLoadQuery is like LoadQuery but panics if selectors are invalid.
func (items *Items) MustLoadQuery(selectors interface{}) *SelectSQL {
	q, err := items.LoadQuery(selectors)
	if err != nil {
		panic(err)
	}
	return q
}

// LoadQuery builds the SELECT statement Load runs. Selectors can be nil
// (every row), Selectors or a selector string. Only operators SQL
// understands are allowed and filter fields must be columns. A sort
// selector replaces the default sort, and is ignored if it is not a
// column. A start selector only applies with a non-zero limit.
//
//	roles.LoadQuery("sort=name, limit=10, start=5")
//	// SELECT roles.id, roles.name, roles.data FROM roles ORDER BY name LIMIT 10 OFFSET 5
func (items *Items) LoadQuery(selectors interface{}) (*SelectSQL, error) {
	q := items.model.Find(AddTableName)
	if items.sort != "" {
		q.OrderBy(items.sort)
	}
	ss, err := toSelectors(selectors)
	if err != nil {
		return nil, items.queryError(err, "Load")
	}
	var sort *Selector
	limit, start := 0, 0
	for i, s := range ss {
		if !queryOperators[s.Operator] {
			return nil, &QueryError{Type: items.name, Field: s.Field, Operator: s.Operator, Value: s.Value}
		}
		switch s.Kind {
		case Sort:
			sort = &ss[i]
		case Limit:
			if limit, err = s.Int(); err != nil {
				return nil, items.queryError(err, "Load")
			}
		case Start:
			if start, err = s.Int(); err != nil {
				return nil, items.queryError(err, "Load")
			}
		default:
			if !items.model.HasColumn(s.Field) {
				return nil, &QueryError{Type: items.name, Field: s.Field, Value: s.Value}
			}
			q.WHERE(s.Field, s.Operator, s.Value)
		}
	}
	if sort != nil && items.model.HasColumn(sort.SortField()) {
		if sort.Descending() {
			q.OrderBy(sort.SortField() + " DESC")
		} else {
			q.OrderBy(sort.SortField())
		}
	}
	if limit > 0 {
		q.Limit(limit).Offset(start)
	}
	return q, nil
}

func (items *Items) queryError(err error, op string) error {
	if qe, ok := err.(*QueryError); ok && qe.Type == "" {
		qe.Type = items.name
		qe.Op = op
	}
	return err
}

// MustLoad is like Load but panics if load operation fails.
func (items *Items) MustLoad(target *Collection, selectors interface{}) *Collection {
	c, err := items.Load(target, selectors)
	if err != nil {
		panic(err)
	}
	return c
}

// Load runs LoadQuery and appends one new item per row to target, in row
// order. A nil target gets a new collection. The "data" column is decoded
// from JSON; an empty value is skipped and a malformed one is logged and
// skipped. When done, target and its new items track changes, starting
// from an empty change set. Rows are added only once all of them scanned,
// so a failed load leaves target as it was.
//
// Invalid selectors are returned as *QueryError before anything runs,
// database failures as *PersistenceError.
func (items *Items) Load(target *Collection, selectors interface{}) (*Collection, error) {
	q, err := items.LoadQuery(selectors)
	if err != nil {
		return nil, err
	}
	if target == nil {
		target = NewCollection(items.model)
	}
	var loaded []Saveable
	err = q.Query(func(rows db.Rows) error {
		item := items.MakeBlankItem()
		badData := func(err error) {
			items.model.logError("saveable: skipped malformed data of", items.Table(), "row:", err)
		}
		if err := items.model.scan(reflect.ValueOf(item).Elem(), rows, badData); err != nil {
			return err
		}
		loaded = append(loaded, item)
		return nil
	})
	if err != nil {
		return target, &PersistenceError{Op: "load", Table: items.Table(), Err: err}
	}
	target.SetTrackChanges(false)
	for _, item := range loaded {
		item.SetTrackChanges(true)
		target.Add(item)
		for _, fn := range items.afterLoad {
			fn(item)
		}
	}
	target.SetTrackChanges(true)
	return target, nil
}

// MustLoadAll is like LoadAll but panics if load operation fails.
func (items *Items) MustLoadAll() *Collection {
	c, err := items.LoadAll()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadAll loads every row into the authoritative collection, once.
func (items *Items) LoadAll() (*Collection, error) {
	if items.loaded {
		return items.all, nil
	}
	if _, err := items.Load(items.all, nil); err != nil {
		return items.all, err
	}
	items.loaded = true
	return items.all, nil
}

// Reload empties the authoritative collection and loads it again.
func (items *Items) Reload() (*Collection, error) {
	items.all = NewCollection(items.model)
	items.loaded = false
	return items.LoadAll()
}

func (items *Items) checkType(op string, item Saveable) error {
	got := "nil"
	if item != nil {
		got = reflect.TypeOf(item).String()
		rv := reflect.ValueOf(item)
		if reflect.TypeOf(item) == items.itemType && !rv.IsNil() {
			return nil
		}
	}
	return &TypeMismatchError{
		Op:       op,
		Expected: items.itemType.String(),
		Got:      got,
	}
}

// MustSave is like Save but panics if save operation fails.
func (items *Items) MustSave(item Saveable) {
	if err := items.Save(item); err != nil {
		panic(err)
	}
}

// Save writes every column the save policy allows (all but "id" by
// default). The data mapping is written in full, without nil values. An
// item with id 0 is inserted and gets the new id; any other item is
// updated by id. On success the item's change set is reset and a new item
// is added to the authoritative collection if that was loaded.
//
// A wrong item type is returned as *TypeMismatchError before anything
// runs, database failures as *PersistenceError.
func (items *Items) Save(item Saveable) error {
	if err := items.checkType("Save", item); err != nil {
		return err
	}
	for _, fn := range items.beforeSave {
		if err := fn(item); err != nil {
			return err
		}
	}
	changes := Changes{}
	for _, change := range items.model.TableData(item) {
		if items.saveItemKey(change.Field.ColumnName) {
			changes = append(changes, change)
		}
	}
	id := item.GetId()
	if id == 0 {
		var newId int
		if err := items.model.Insert(changes).Returning("id").QueryRow(&newId); err != nil {
			return &PersistenceError{Op: "insert", Table: items.Table(), Err: err}
		}
		item.SetId(newId)
		if items.loaded {
			items.all.Add(item)
		}
	} else {
		err := items.model.Update(changes).Where("id = " + strconv.Itoa(id)).Execute()
		if err != nil {
			return &PersistenceError{Op: "update", Table: items.Table(), Err: err}
		}
	}
	item.ResetTrackChanges()
	for _, fn := range items.afterSave {
		fn(item)
	}
	return nil
}

// MustDelete is like Delete but panics if delete operation fails.
func (items *Items) MustDelete(item Saveable) bool {
	ok, err := items.Delete(item)
	if err != nil {
		panic(err)
	}
	return ok
}

// Delete removes item from the authoritative collection and deletes its
// row. On success the item's id is reset to 0. An item with id 0 is not
// deleted and false is returned. If the DELETE fails the item is put back
// where it was in the collection and a *PersistenceError is returned.
func (items *Items) Delete(item Saveable) (bool, error) {
	if err := items.checkType("Delete", item); err != nil {
		return false, err
	}
	id := item.GetId()
	if id == 0 {
		return false, nil
	}
	for _, fn := range items.beforeDelete {
		if err := fn(item); err != nil {
			return false, err
		}
	}
	pos := items.all.IndexOf(item)
	changed := items.all.IsChanged("items")
	items.all.Remove(item)
	if err := items.model.Delete().Where("id = " + strconv.Itoa(id)).Execute(); err != nil {
		if pos != -1 {
			items.all.insertAt(pos, item)
			if !changed {
				items.all.untrack("items")
			}
		}
		return false, &PersistenceError{Op: "delete", Table: items.Table(), Err: err}
	}
	item.SetId(0)
	for _, fn := range items.afterDelete {
		fn(item)
	}
	return true, nil
}

// Find filters the authoritative collection in memory, see
// Collection.Find. It does not query the database.
func (items *Items) Find(selectors interface{}) (*Collection, error) {
	c, err := items.all.Find(selectors)
	if err != nil {
		return nil, items.queryError(err, "Find")
	}
	return c, nil
}

// MustFind is like Find but panics if selectors are invalid.
func (items *Items) MustFind(selectors interface{}) *Collection {
	c, err := items.Find(selectors)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns an item of the authoritative collection by id or name, see
// Collection.Get.
func (items *Items) Get(key interface{}) (Saveable, bool) {
	return items.all.Get(key)
}

// MustGet is like Get but panics with ErrNotFound if there is no such
// item.
func (items *Items) MustGet(key interface{}) Saveable {
	item, ok := items.Get(key)
	if !ok {
		panic(ErrNotFound)
	}
	return item
}

// Has reports whether item is in the authoritative collection.
func (items *Items) Has(item Saveable) bool {
	return items.all.Has(item)
}

// Each calls fn for every item of the authoritative collection until fn
// returns false.
func (items *Items) Each(fn func(Saveable) bool) {
	items.all.Each(fn)
}

func (items *Items) String() string {
	return items.name + " (" + strings.Join(items.model.Columns(), ", ") + ") in " + items.Table()
}
