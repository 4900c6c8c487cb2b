// Package listing implements the filter, sort and paginate pipeline shared by
// every list view, and the mapping between view state and URL query strings.
package listing

import "time"

// Ordered filters and sorts records without paginating. Exports use it to get
// every row a view would show.
func Ordered[T Filterable](records []T, st State, schema Schema, now time.Time) []T {
	return Sort(Filter(records, st.Criteria, schema, now), st.Sort, schema)
}

// Run applies filter, sort and pagination in that order.
func Run[T Filterable](records []T, st State, schema Schema, now time.Time) Page[T] {
	return Paginate(Ordered(records, st, schema, now), st.Pagination)
}
