package listing

import (
	"slices"
	"strings"
	"time"
)

// AllValue is the filter sentinel meaning "no constraint on this field".
const AllValue = "all"

// Reserved query parameters shared by every list view.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamDate     = "date"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// Date buckets accepted by the date filter.
const (
	DateToday   = "today"
	DateWeek    = "week"
	DateMonth   = "month"
	DateQuarter = "quarter"
)

// DateBuckets lists the date filter values in display order.
var DateBuckets = []string{DateToday, DateWeek, DateMonth, DateQuarter}

// DefaultPageSizes are the page sizes offered when a schema does not set its own.
var DefaultPageSizes = []int{10, 20, 30, 50, 100}

// Filterable is implemented by every row type a list view renders.
type Filterable interface {
	RecordID() string
	// SearchFields returns the values free-text search is matched against.
	SearchFields() []string
	Attribute(name string) (string, bool)
	Numeric(name string) (float64, bool)
	Timestamp(name string) (time.Time, bool)
}

// MatchMode controls how a categorical filter compares values.
type MatchMode int

const (
	// MatchExact requires byte-for-byte equality.
	MatchExact MatchMode = iota
	// MatchNormalized compares trimmed, lower-cased identifiers.
	MatchNormalized
)

// FilterAxis binds a query parameter to a record attribute.
type FilterAxis struct {
	Param     string
	Attribute string
	// Options lists the accepted values. Empty means any non-empty value.
	Options []string
	Match   MatchMode
}

func (a FilterAxis) accepts(value string) bool {
	if value == "" || value == AllValue {
		return false
	}
	if len(a.Options) == 0 {
		return true
	}
	if a.Match == MatchNormalized {
		key := NormalizeKey(value)
		return slices.ContainsFunc(a.Options, func(o string) bool { return NormalizeKey(o) == key })
	}
	return slices.Contains(a.Options, value)
}

func (a FilterAxis) matches(r Filterable, want string) bool {
	got, ok := r.Attribute(a.Attribute)
	if !ok {
		return false
	}
	if a.Match == MatchNormalized {
		return NormalizeKey(got) == NormalizeKey(want)
	}
	return got == want
}

// SortKind selects the comparison used for a sort field.
type SortKind int

const (
	SortString SortKind = iota
	SortNumber
	SortTime
)

// SortField is a field a view can be ordered by.
type SortField struct {
	Name string
	Kind SortKind
}

// Schema describes one list view: its filters, sort fields and paging.
type Schema struct {
	View    string
	Filters []FilterAxis
	// DateAttribute is the timestamp the date filter buckets on; empty disables it.
	DateAttribute   string
	SortFields      []SortField
	DefaultSort     SortSpec
	PageSizes       []int
	DefaultPageSize int
}

func (s Schema) filter(param string) (FilterAxis, bool) {
	for _, a := range s.Filters {
		if a.Param == param {
			return a, true
		}
	}
	return FilterAxis{}, false
}

func (s Schema) sortField(name string) (SortField, bool) {
	for _, f := range s.SortFields {
		if f.Name == name {
			return f, true
		}
	}
	return SortField{}, false
}

func (s Schema) pageSizes() []int {
	if len(s.PageSizes) == 0 {
		return DefaultPageSizes
	}
	return s.PageSizes
}

func (s Schema) defaultPageSize() int {
	sizes := s.pageSizes()
	if slices.Contains(sizes, s.DefaultPageSize) {
		return s.DefaultPageSize
	}
	return sizes[0]
}

// NormalizeKey canonicalises an identifier such as a location code.
func NormalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
