// Package criteria turns raw list-query parameters (filter map, order
// string, page window) into a validated query plan over an allow-listed
// field registry.
package criteria

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind describes how a registered field is parsed and compared.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// Field declares one queryable property of an entity: its storage column
// and a typed accessor matching its Kind.
type Field[T any] struct {
	Column string
	Kind   Kind
	String func(T) string
	Number func(T) decimal.Decimal
	Time   func(T) time.Time
}

// Registry is the allow-list of queryable fields for one entity type.
// Keys are canonical field names (first letter capitalized).
type Registry[T any] struct {
	fields map[string]Field[T]
}

// NewRegistry validates the field set once at startup: canonical naming,
// non-empty columns, and an accessor matching each field's kind.
func NewRegistry[T any](fields map[string]Field[T]) (*Registry[T], error) {
	for name, field := range fields {
		if name == "" || Canonical(name) != name {
			return nil, fmt.Errorf("criteria: field %q is not in canonical form", name)
		}
		if field.Column == "" {
			return nil, fmt.Errorf("criteria: field %q has no column", name)
		}
		switch field.Kind {
		case KindString:
			if field.String == nil {
				return nil, fmt.Errorf("criteria: string field %q has no accessor", name)
			}
		case KindNumber:
			if field.Number == nil {
				return nil, fmt.Errorf("criteria: number field %q has no accessor", name)
			}
		case KindTime:
			if field.Time == nil {
				return nil, fmt.Errorf("criteria: time field %q has no accessor", name)
			}
		default:
			return nil, fmt.Errorf("criteria: field %q has unknown kind %d", name, field.Kind)
		}
	}
	return &Registry[T]{fields: fields}, nil
}

// MustRegistry is NewRegistry for package-level construction.
func MustRegistry[T any](fields map[string]Field[T]) *Registry[T] {
	registry, err := NewRegistry(fields)
	if err != nil {
		panic(err)
	}
	return registry
}

// Canonical normalizes a field name to the entity's casing convention:
// first letter capitalized, remainder untouched.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

func (r *Registry[T]) resolve(name string) (string, Field[T], error) {
	canonical := Canonical(name)
	field, ok := r.fields[canonical]
	if !ok {
		return "", Field[T]{}, &UnknownFieldError{Field: canonical}
	}
	return canonical, field, nil
}

// Op is a filter comparison operator.
type Op int

const (
	OpEqual Op = iota
	OpLike
	OpAtLeast
	OpAtMost
)

// Filter is one resolved predicate of a query plan.
type Filter struct {
	Field  string
	Column string
	Kind   Kind
	Op     Op

	Text   string
	Number decimal.Decimal
	Time   time.Time
}

// LikePattern converts the client-side `*` wildcard into SQL LIKE syntax.
func (f Filter) LikePattern() string {
	return strings.ReplaceAll(f.Text, "*", "%")
}

// SortKey is one resolved ordering key of a query plan.
type SortKey struct {
	Field      string
	Column     string
	Descending bool
}

// Plan is the resolved filter predicates, sort keys, and page window for
// one list query. Filters combine with AND; sort keys apply in order as a
// stable multi-key sort; pagination applies last.
type Plan struct {
	Filters  []Filter
	Sort     []SortKey
	Page     int
	PageSize int
}

// Paginated reports whether a page window applies. Non-positive page or
// page size disables pagination and returns the full result set.
func (p Plan) Paginated() bool {
	return p.Page > 0 && p.PageSize > 0
}

// Offset is the number of records skipped before the page window.
func (p Plan) Offset() int {
	if !p.Paginated() {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// UnknownFieldError reports a filter or order key that does not resolve
// to a registered field.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in query", e.Field)
}

// InvalidValueError reports a filter value that cannot be parsed for the
// target field's kind.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
}

const (
	minPrefix = "_min"
	maxPrefix = "_max"
)

// Build resolves raw query parameters into a Plan. Order tokens are
// comma-separated "<field> [asc|desc]" pairs; anything other than a
// case-insensitive "desc" sorts ascending. Filter keys starting with
// "_min"/"_max" become range predicates; other keys become equality
// predicates, or LIKE when the value carries a `*` wildcard.
func (r *Registry[T]) Build(page, pageSize int, order string, filters map[string]string) (Plan, error) {
	plan := Plan{Page: page, PageSize: pageSize}

	for _, token := range strings.Split(order, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, err := r.parseSortToken(token)
		if err != nil {
			return Plan{}, err
		}
		plan.Sort = append(plan.Sort, key)
	}

	// Deterministic plan regardless of map iteration order.
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		filter, err := r.parseFilter(key, filters[key])
		if err != nil {
			return Plan{}, err
		}
		plan.Filters = append(plan.Filters, filter)
	}
	return plan, nil
}

func (r *Registry[T]) parseSortToken(token string) (SortKey, error) {
	parts := strings.Fields(token)
	name, field, err := r.resolve(parts[0])
	if err != nil {
		return SortKey{}, err
	}
	descending := len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	return SortKey{Field: name, Column: field.Column, Descending: descending}, nil
}

func (r *Registry[T]) parseFilter(key, value string) (Filter, error) {
	op := OpEqual
	name := key
	switch {
	case strings.HasPrefix(key, minPrefix):
		op = OpAtLeast
		name = key[len(minPrefix):]
	case strings.HasPrefix(key, maxPrefix):
		op = OpAtMost
		name = key[len(maxPrefix):]
	}

	canonical, field, err := r.resolve(name)
	if err != nil {
		return Filter{}, err
	}
	filter := Filter{Field: canonical, Column: field.Column, Kind: field.Kind, Op: op}

	if op == OpEqual && field.Kind == KindString && strings.Contains(value, "*") {
		filter.Op = OpLike
		filter.Text = value
		return filter, nil
	}

	switch field.Kind {
	case KindNumber:
		number, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return Filter{}, &InvalidValueError{Field: canonical, Value: value}
		}
		filter.Number = number
	case KindTime:
		at, ok := parseTime(value)
		if !ok {
			return Filter{}, &InvalidValueError{Field: canonical, Value: value}
		}
		filter.Time = at
	default:
		filter.Text = value
	}
	return filter, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts common date-time shapes; layouts without an explicit
// zone are interpreted as UTC.
func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if at, err := time.Parse(layout, value); err == nil {
			return at.UTC(), true
		}
	}
	return time.Time{}, false
}
