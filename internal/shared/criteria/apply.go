package criteria

import (
	"sort"
	"strings"
)

// Apply evaluates a plan against an in-memory collection: filter, stable
// multi-key sort, then page window. The total is the match count before
// pagination. Used by the in-memory repository; the SQL adapter
// translates the same plan into WHERE/ORDER BY/LIMIT clauses instead.
func (r *Registry[T]) Apply(plan Plan, items []T) ([]T, int) {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if r.matches(plan.Filters, item) {
			matched = append(matched, item)
		}
	}
	total := len(matched)

	if len(plan.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return r.less(plan.Sort, matched[i], matched[j])
		})
	}

	if plan.Paginated() {
		offset := plan.Offset()
		if offset >= total {
			return nil, total
		}
		end := offset + plan.PageSize
		if end > total {
			end = total
		}
		matched = matched[offset:end]
	}
	return matched, total
}

func (r *Registry[T]) matches(filters []Filter, item T) bool {
	for _, filter := range filters {
		field := r.fields[filter.Field]
		if !matchesField(filter, field, item) {
			return false
		}
	}
	return true
}

func matchesField[T any](filter Filter, field Field[T], item T) bool {
	switch field.Kind {
	case KindNumber:
		cmp := field.Number(item).Cmp(filter.Number)
		switch filter.Op {
		case OpAtLeast:
			return cmp >= 0
		case OpAtMost:
			return cmp <= 0
		default:
			return cmp == 0
		}
	case KindTime:
		at := field.Time(item)
		switch filter.Op {
		case OpAtLeast:
			return !at.Before(filter.Time)
		case OpAtMost:
			return !at.After(filter.Time)
		default:
			return at.Equal(filter.Time)
		}
	default:
		value := field.String(item)
		switch filter.Op {
		case OpAtLeast:
			return value >= filter.Text
		case OpAtMost:
			return value <= filter.Text
		case OpLike:
			return wildcardMatch(filter.Text, value)
		default:
			return value == filter.Text
		}
	}
}

func (r *Registry[T]) less(keys []SortKey, a, b T) bool {
	for _, key := range keys {
		field := r.fields[key.Field]
		cmp := compareField(field, a, b)
		if cmp == 0 {
			continue
		}
		if key.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func compareField[T any](field Field[T], a, b T) int {
	switch field.Kind {
	case KindNumber:
		return field.Number(a).Cmp(field.Number(b))
	case KindTime:
		at, bt := field.Time(a), field.Time(b)
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(field.String(a), field.String(b))
	}
}

// wildcardMatch applies case-sensitive `*`-wildcard matching with LIKE
// semantics: `*` spans any sequence, everything else is literal.
func wildcardMatch(pattern, value string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return value == pattern
	}
	if !strings.HasPrefix(value, parts[0]) {
		return false
	}
	value = value[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(value, part)
		if idx < 0 {
			return false
		}
		value = value[idx+len(part):]
	}
	return len(value) >= len(last) && strings.HasSuffix(value, last)
}
