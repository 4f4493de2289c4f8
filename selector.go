package saveable

import (
	"strconv"
	"strings"
)

type (
	// SelectorKind tells whether a selector filters items or shapes the
	// result. It is decided when the selector is created, from its field.
	SelectorKind int

	// Selector is one "field operator value" clause. Create selectors
	// with NewSelector or ParseSelectors; Kind is derived from Field.
	Selector struct {
		Field    string
		Operator string
		Value    string
		Kind     SelectorKind
	}

	// Selectors is an ordered set of selectors. Empty selectors match
	// everything.
	Selectors []Selector
)

const (
	Filter SelectorKind = iota
	Sort
	Limit
	Start
)

// Operators recognised in selector strings, longest first so that "<="
// wins over "<".
var operators = []string{"!=", "<>", "<=", ">=", "%=", "*=", "^=", "$=", "~=", "=", "<", ">"}

// Operators Items.Load can translate to SQL.
var queryOperators = map[string]bool{
	"=":  true,
	"!=": true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
	"%=": true,
}

func (k SelectorKind) String() string {
	switch k {
	case Sort:
		return "sort"
	case Limit:
		return "limit"
	case Start:
		return "start"
	}
	return "filter"
}

func kindOf(field string) SelectorKind {
	switch field {
	case "sort":
		return Sort
	case "limit":
		return Limit
	case "start":
		return Start
	}
	return Filter
}

func isOperator(operator string) bool {
	for _, op := range operators {
		if op == operator {
			return true
		}
	}
	return false
}

// NewSelector creates a selector, deciding its kind from field.
func NewSelector(field, operator, value string) (Selector, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Selector{}, &QueryError{Operator: operator, Value: value, Reason: "selector has no field"}
	}
	if !isOperator(operator) {
		return Selector{}, &QueryError{Field: field, Operator: operator, Value: value,
			Reason: "unknown operator '" + operator + "'"}
	}
	if _, ok := quoteValue(value); !ok {
		return Selector{}, &QueryError{Field: field, Operator: operator, Value: value,
			Reason: "value cannot be quoted with ' or \""}
	}
	return Selector{
		Field:    field,
		Operator: operator,
		Value:    value,
		Kind:     kindOf(field),
	}, nil
}

// MustParseSelectors is like ParseSelectors but panics if parsing fails.
func MustParseSelectors(s string) Selectors {
	selectors, err := ParseSelectors(s)
	if err != nil {
		panic(err)
	}
	return selectors
}

// ParseSelectors parses comma separated "field operator value" clauses.
// A value may be quoted with " or ' to contain commas; a quote only
// delimits a value when it opens it and the closing quote is followed by
// a comma or the end. Empty clauses are ignored, so an empty string gives
// empty selectors.
//
//	saveable.ParseSelectors("name%=adm, sort=-name, limit=10")
func ParseSelectors(s string) (out Selectors, err error) {
	for _, clause := range splitClauses(s) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		i, operator := operatorAt(clause)
		if i == -1 {
			return nil, &QueryError{Field: clause, Reason: "selector '" + clause + "' has no operator"}
		}
		if operator == "" {
			return nil, &QueryError{Field: strings.TrimSpace(clause[:i]),
				Reason: "selector '" + clause + "' has no operator"}
		}
		value := unquote(strings.TrimSpace(clause[i+len(operator):]))
		selector, err := NewSelector(clause[:i], operator, value)
		if err != nil {
			return nil, err
		}
		out = append(out, selector)
	}
	return
}

const operatorChars = "=!<>%*^$~"

// operatorAt returns the position of the first operator character of
// clause and the longest operator starting there. The operator is empty
// if the characters form no known operator, the position is -1 if there
// are none.
func operatorAt(clause string) (int, string) {
	i := strings.IndexAny(clause, operatorChars)
	if i == -1 {
		return -1, ""
	}
	for _, op := range operators {
		if strings.HasPrefix(clause[i:], op) {
			return i, op
		}
	}
	return i, ""
}

func splitClauses(s string) (out []string) {
	for {
		end := clauseEnd(s)
		out = append(out, s[:end])
		if end == len(s) {
			return
		}
		s = s[end+1:]
	}
}

// clauseEnd returns the index of the comma ending the first clause of s,
// or len(s).
func clauseEnd(s string) int {
	comma := strings.IndexByte(s, ',')
	i, operator := operatorAt(s)
	if i == -1 || (comma != -1 && comma < i) {
		if comma == -1 {
			return len(s)
		}
		return comma
	}
	v := i + len(operator)
	if operator == "" {
		v = i + 1
	}
	for v < len(s) && (s[v] == ' ' || s[v] == '\t') {
		v++
	}
	if v < len(s) && (s[v] == '"' || s[v] == '\'') {
		if c := closingQuote(s[v+1:], s[v]); c != -1 {
			v += c + 2
		}
	}
	if c := strings.IndexByte(s[v:], ','); c != -1 {
		return v + c
	}
	return len(s)
}

// closingQuote returns the index of the first q in s followed only by
// spaces before a comma or the end, or -1.
func closingQuote(s string, q byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if rest := strings.TrimLeft(s[i+1:], " \t"); rest == "" || rest[0] == ',' {
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// quoteValue returns value as it is written in a selector string, quoted
// when it contains a comma, starts with a quote or an operator character,
// or has surrounding spaces. It reports false if neither quote can enclose
// value.
func quoteValue(value string) (string, bool) {
	if !strings.Contains(value, ",") && value == strings.TrimSpace(value) &&
		(value == "" || strings.IndexByte(`"'`+operatorChars, value[0]) == -1) {
		return value, true
	}
	for _, q := range []string{`"`, "'"} {
		if encloses(value, q[0]) {
			return q + value + q, true
		}
	}
	return value, false
}

// encloses reports whether q can quote value: no q inside value may be
// followed by spaces and a comma.
func encloses(value string, q byte) bool {
	for i := 0; i < len(value); i++ {
		if value[i] != q {
			continue
		}
		if rest := strings.TrimLeft(value[i+1:], " \t"); rest != "" && rest[0] == ',' {
			return false
		}
	}
	return true
}

// toSelectors accepts nil, Selectors, *Selectors, Selector or a selector
// string. The kind of given selectors is derived from their field again,
// so selectors built as literals work like those from NewSelector.
func toSelectors(selectors interface{}) (Selectors, error) {
	var out Selectors
	switch s := selectors.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseSelectors(s)
	case Selectors:
		out = s
	case *Selectors:
		if s == nil {
			return nil, nil
		}
		out = *s
	case Selector:
		out = Selectors{s}
	case []Selector:
		out = Selectors(s)
	default:
		return nil, &QueryError{Reason: "selectors must be a string or Selectors"}
	}
	if len(out) == 0 {
		return nil, nil
	}
	normalized := make(Selectors, len(out))
	for i, selector := range out {
		selector.Kind = kindOf(selector.Field)
		normalized[i] = selector
	}
	return normalized, nil
}

// String writes the selector the way ParseSelectors reads it.
func (s Selector) String() string {
	value, _ := quoteValue(s.Value)
	return s.Field + s.Operator + value
}

// Descending reports whether a sort selector sorts in reverse order, as in
// "sort=-name".
func (s Selector) Descending() bool {
	return s.Kind == Sort && strings.HasPrefix(s.Value, "-")
}

// SortField returns the field a sort selector sorts by.
func (s Selector) SortField() string {
	return strings.TrimPrefix(s.Value, "-")
}

// Int returns the value of a limit or start selector.
func (s Selector) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Value))
	if err != nil || n < 0 {
		return 0, &QueryError{Field: s.Field, Operator: s.Operator, Value: s.Value,
			Reason: s.Field + " must be a non-negative integer, got '" + s.Value + "'"}
	}
	return n, nil
}

// Match reports whether value satisfies a filter selector. Both sides are
// compared as numbers when they both parse as numbers, as strings
// otherwise. A slice matches if any of its elements matches.
func (s Selector) Match(value interface{}) bool {
	switch v := value.(type) {
	case []interface{}:
		for _, x := range v {
			if s.Match(x) {
				return true
			}
		}
		return s.Operator == "!=" || s.Operator == "<>"
	case []int:
		for _, x := range v {
			if s.Match(x) {
				return true
			}
		}
		return s.Operator == "!=" || s.Operator == "<>"
	}
	str, _ := toSQLString(value)
	switch s.Operator {
	case "%=", "*=":
		return strings.Contains(strings.ToLower(str), strings.ToLower(s.Value))
	case "^=":
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(s.Value))
	case "$=":
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(s.Value))
	case "~=":
		lower := strings.ToLower(str)
		for _, word := range strings.Fields(strings.ToLower(s.Value)) {
			if !strings.Contains(lower, word) {
				return false
			}
		}
		return true
	}
	c := compare(str, s.Value)
	switch s.Operator {
	case "=":
		return c == 0
	case "!=", "<>":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	}
	return false
}

// compare compares a and b as numbers if both are numbers.
func compare(a, b string) int {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func (s Selectors) String() string {
	out := make([]string, len(s))
	for i, selector := range s {
		out[i] = selector.String()
	}
	return strings.Join(out, ", ")
}

// Filters returns the selectors of kind Filter.
func (s Selectors) Filters() (out Selectors) {
	for _, selector := range s {
		if selector.Kind == Filter {
			out = append(out, selector)
		}
	}
	return
}
