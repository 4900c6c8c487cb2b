package listing

import "strings"

// Criteria is the set of filters applied to a collection.
type Criteria struct {
	Search string
	// Filters maps a query parameter to its selected value. Missing keys mean AllValue.
	Filters map[string]string
	Date    string
}

// Value returns the selected value for param, or AllValue.
func (c Criteria) Value(param string) string {
	if v, ok := c.Filters[param]; ok && v != "" {
		return v
	}
	return AllValue
}

// With returns a copy of c with param set to value. Setting AllValue clears the filter.
func (c Criteria) With(param, value string) Criteria {
	filters := make(map[string]string, len(c.Filters)+1)
	for k, v := range c.Filters {
		filters[k] = v
	}
	if value == "" || value == AllValue {
		delete(filters, param)
	} else {
		filters[param] = value
	}
	c.Filters = filters
	return c
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec orders a collection by one field.
type SortSpec struct {
	Field     string
	Direction Direction
}

// String encodes the spec as "field-direction".
func (s SortSpec) String() string {
	return s.Field + "-" + string(s.Direction)
}

// ParseSort decodes "field-direction". The split happens at the last hyphen.
func ParseSort(raw string) (SortSpec, bool) {
	i := strings.LastIndex(raw, "-")
	if i <= 0 || i == len(raw)-1 {
		return SortSpec{}, false
	}
	dir := Direction(raw[i+1:])
	if dir != Asc && dir != Desc {
		return SortSpec{}, false
	}
	return SortSpec{Field: raw[:i], Direction: dir}, true
}
