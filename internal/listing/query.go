package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// State is everything that determines which rows a list view renders.
type State struct {
	Criteria   Criteria
	Sort       SortSpec
	Pagination Pagination
}

// DefaultState is the state of a view opened without query parameters.
func DefaultState(schema Schema) State {
	return State{
		Criteria:   Criteria{Filters: map[string]string{}, Date: AllValue},
		Sort:       schema.DefaultSort,
		Pagination: Pagination{PageIndex: 0, PageSize: schema.defaultPageSize()},
	}
}

// Decode reads view state from URL query parameters. Missing or unrecognised
// values fall back to their defaults; decoding never fails.
func Decode(values url.Values, schema Schema) State {
	st := DefaultState(schema)
	st.Criteria.Search = strings.TrimSpace(values.Get(ParamSearch))

	for _, axis := range schema.Filters {
		if v := values.Get(axis.Param); axis.accepts(v) {
			st.Criteria.Filters[axis.Param] = v
		}
	}

	if schema.DateAttribute != "" {
		if v := values.Get(ParamDate); slices.Contains(DateBuckets, v) {
			st.Criteria.Date = v
		}
	}

	if spec, ok := ParseSort(values.Get(ParamSort)); ok {
		if _, known := schema.sortField(spec.Field); known {
			st.Sort = spec
		}
	}

	if size, err := strconv.Atoi(values.Get(ParamPageSize)); err == nil && slices.Contains(schema.pageSizes(), size) {
		st.Pagination.PageSize = size
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 1 {
		st.Pagination.PageIndex = page - 1
	}
	return st
}

// Encode writes the non-default parts of st as query parameters.
func Encode(st State, schema Schema) url.Values {
	values := url.Values{}
	if search := strings.TrimSpace(st.Criteria.Search); search != "" {
		values.Set(ParamSearch, search)
	}
	for _, axis := range schema.Filters {
		if v := st.Criteria.Value(axis.Param); axis.accepts(v) {
			values.Set(axis.Param, v)
		}
	}
	if schema.DateAttribute != "" && slices.Contains(DateBuckets, st.Criteria.Date) {
		values.Set(ParamDate, st.Criteria.Date)
	}
	if _, known := schema.sortField(st.Sort.Field); known && st.Sort != schema.DefaultSort {
		values.Set(ParamSort, st.Sort.String())
	}
	if st.Pagination.PageSize != schema.defaultPageSize() && slices.Contains(schema.pageSizes(), st.Pagination.PageSize) {
		values.Set(ParamPageSize, strconv.Itoa(st.Pagination.PageSize))
	}
	if st.Pagination.PageIndex > 0 {
		values.Set(ParamPage, strconv.Itoa(st.Pagination.PageIndex+1))
	}
	return values
}

// Query is the canonical query string for st, keys sorted.
func (st State) Query(schema Schema) string {
	return Encode(st, schema).Encode()
}

// Sync computes the canonical query for next and reports whether it differs
// from current. Callers only replace their URL when changed is true.
func Sync(current string, next State, schema Schema) (query string, changed bool) {
	query = next.Query(schema)
	parsed, err := url.ParseQuery(strings.TrimPrefix(current, "?"))
	if err != nil {
		return query, true
	}
	return query, parsed.Encode() != query
}
