package listing

import (
	"strings"
	"time"
)

// Filter returns the records matching every active predicate in c.
// The input slice is never modified.
func Filter[T Filterable](records []T, c Criteria, schema Schema, now time.Time) []T {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	var since time.Time
	hasDate := false
	if schema.DateAttribute != "" && c.Date != "" && c.Date != AllValue {
		since, hasDate = DateBoundary(c.Date, now)
	}

	// only axes the schema knows about and whose value it accepts take part
	type active struct {
		axis FilterAxis
		want string
	}
	var axes []active
	for _, axis := range schema.Filters {
		want := c.Value(axis.Param)
		if axis.accepts(want) {
			axes = append(axes, active{axis: axis, want: want})
		}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		matched := true
		for _, a := range axes {
			if !a.axis.matches(r, a.want) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if hasDate {
			ts, ok := r.Timestamp(schema.DateAttribute)
			if !ok || ts.Before(since) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r Filterable, search string) bool {
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// DateBoundary returns the start of the bucket containing now.
// Weeks start on Monday.
func DateBoundary(bucket string, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	loc := now.Location()
	switch bucket {
	case DateToday:
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	case DateWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc), true
	case DateMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), true
	case DateQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}
