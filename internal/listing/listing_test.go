package listing

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	id       string
	name     string
	sku      string
	category string
	location string
	status   string
	qty      float64
	arrival  *time.Time
	created  time.Time
}

func (r testRecord) RecordID() string { return r.id }
func (r testRecord) SearchFields() []string { return []string{r.name, r.sku} }

func (r testRecord) Attribute(name string) (string, bool) {
	switch name {
	case "name":
		return r.name, true
	case "sku":
		return r.sku, true
	case "category":
		return r.category, true
	case "location":
		return r.location, true
	case "status":
		return r.status, true
	}
	return "", false
}

func (r testRecord) Numeric(name string) (float64, bool) {
	if name == "quantity" {
		return r.qty, true
	}
	return 0, false
}

func (r testRecord) Timestamp(name string) (time.Time, bool) {
	switch name {
	case "created":
		return r.created, true
	case "arrival":
		if r.arrival == nil {
			return time.Time{}, false
		}
		return *r.arrival, true
	}
	return time.Time{}, false
}

func testSchema() Schema {
	return Schema{
		View: "test",
		Filters: []FilterAxis{
			{Param: "status", Attribute: "status", Options: []string{"in-stock", "low-stock", "out-of-stock"}},
			{Param: "category", Attribute: "category"},
			{Param: "location", Attribute: "location", Match: MatchNormalized},
		},
		DateAttribute: "created",
		SortFields: []SortField{
			{Name: "name", Kind: SortString},
			{Name: "quantity", Kind: SortNumber},
			{Name: "arrival", Kind: SortTime},
		},
		DefaultSort:     SortSpec{Field: "name", Direction: Asc},
		DefaultPageSize: 10,
	}
}

func names(rows []testRecord) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.name)
	}
	return out
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	records := []testRecord{{id: "1", name: "Wireless Mouse"}, {id: "2", name: "Office Chair"}}
	schema := testSchema()
	now := time.Now()

	for _, q := range []string{"mouse", "MOUSE", "  Mouse "} {
		got := Filter(records, Criteria{Search: q}, schema, now)
		assert.Equal(t, []string{"Wireless Mouse"}, names(got), "search %q", q)
	}

	assert.Len(t, Filter(records, Criteria{}, schema, now), 2)
}

func TestFilter_SearchMatchesSKU(t *testing.T) {
	records := []testRecord{{id: "1", name: "Desk", sku: "FUR-001"}, {id: "2", name: "Lamp", sku: "LGT-002"}}
	got := Filter(records, Criteria{Search: "fur"}, testSchema(), time.Now())
	assert.Equal(t, []string{"Desk"}, names(got))
}

func TestFilter_AllSentinelNeverExcludes(t *testing.T) {
	records := []testRecord{
		{id: "1", name: "A", category: "tools"},
		{id: "2", name: "B", category: "all"},
		{id: "3", name: "C", category: ""},
	}
	got := Filter(records, Criteria{Filters: map[string]string{"category": AllValue}}, testSchema(), time.Now())
	assert.Len(t, got, 3)
}

func TestFilter_CategoricalFiltersUseAND(t *testing.T) {
	records := []testRecord{
		{id: "1", name: "A", category: "tools", status: "in-stock"},
		{id: "2", name: "B", category: "tools", status: "low-stock"},
		{id: "3", name: "C", category: "paint", status: "low-stock"},
	}
	c := Criteria{Filters: map[string]string{"category": "tools", "status": "low-stock"}}
	got := Filter(records, c, testSchema(), time.Now())
	assert.Equal(t, []string{"B"}, names(got))
}

func TestFilter_UnknownOptionIsIgnored(t *testing.T) {
	records := []testRecord{{id: "1", name: "A", status: "in-stock"}, {id: "2", name: "B", status: "low-stock"}}
	c := Criteria{Filters: map[string]string{"status": "bogus"}}
	assert.Len(t, Filter(records, c, testSchema(), time.Now()), 2)
}

func TestFilter_LocationUsesNormalizedEquality(t *testing.T) {
	records := []testRecord{
		{id: "1", name: "A", location: "WH1-A-01"},
		{id: "2", name: "B", location: "wh1-a-010"},
	}
	c := Criteria{Filters: map[string]string{"location": " wh1-a-01 "}}
	got := Filter(records, c, testSchema(), time.Now())
	assert.Equal(t, []string{"A"}, names(got))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := []testRecord{{id: "1", name: "B"}, {id: "2", name: "A"}}
	before := append([]testRecord(nil), records...)
	_ = Filter(records, Criteria{Search: "a"}, testSchema(), time.Now())
	_ = Sort(records, SortSpec{Field: "name", Direction: Asc}, testSchema())
	assert.Equal(t, before, records)
}

func TestFilter_DateBuckets(t *testing.T) {
	// Wednesday 2026-05-13 15:00
	now := time.Date(2026, time.May, 13, 15, 0, 0, 0, time.UTC)
	records := []testRecord{
		{id: "today", name: "today", created: time.Date(2026, time.May, 13, 1, 0, 0, 0, time.UTC)},
		{id: "monday", name: "monday", created: time.Date(2026, time.May, 11, 0, 0, 0, 0, time.UTC)},
		{id: "month", name: "month", created: time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{id: "quarter", name: "quarter", created: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{id: "old", name: "old", created: time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)},
	}
	schema := testSchema()

	tests := []struct {
		bucket string
		want   []string
	}{
		{DateToday, []string{"today"}},
		{DateWeek, []string{"today", "monday"}},
		{DateMonth, []string{"today", "monday", "month"}},
		{DateQuarter, []string{"today", "monday", "month", "quarter"}},
		{AllValue, []string{"today", "monday", "month", "quarter", "old"}},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			got := Filter(records, Criteria{Date: tt.bucket}, schema, now)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestDateBoundary_WeekStartsMonday(t *testing.T) {
	sunday := time.Date(2026, time.May, 17, 10, 0, 0, 0, time.UTC)
	start, ok := DateBoundary(DateWeek, sunday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.May, 11, 0, 0, 0, 0, time.UTC), start)

	_, ok = DateBoundary("yesterday", sunday)
	assert.False(t, ok)
}

func TestSort_NameDescending(t *testing.T) {
	records := []testRecord{{id: "1", name: "Alpha"}, {id: "2", name: "Charlie"}, {id: "3", name: "Bravo"}}
	got := Sort(records, SortSpec{Field: "name", Direction: Desc}, testSchema())
	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, names(got))
}

func TestSort_NumericComparison(t *testing.T) {
	records := []testRecord{{id: "1", name: "a", qty: 100}, {id: "2", name: "b", qty: 9}, {id: "3", name: "c", qty: 20}}
	got := Sort(records, SortSpec{Field: "quantity", Direction: Asc}, testSchema())
	assert.Equal(t, []string{"b", "c", "a"}, names(got))
}

func TestSort_IsStableInBothDirections(t *testing.T) {
	records := []testRecord{
		{id: "1", name: "first", qty: 5},
		{id: "2", name: "other", qty: 1},
		{id: "3", name: "second", qty: 5},
		{id: "4", name: "third", qty: 5},
	}
	asc := Sort(records, SortSpec{Field: "quantity", Direction: Asc}, testSchema())
	assert.Equal(t, []string{"other", "first", "second", "third"}, names(asc))

	desc := Sort(records, SortSpec{Field: "quantity", Direction: Desc}, testSchema())
	assert.Equal(t, []string{"first", "second", "third", "other"}, names(desc))
}

func TestSort_MissingValuesLast(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	records := []testRecord{
		{id: "1", name: "none"},
		{id: "2", name: "late", arrival: &late},
		{id: "3", name: "early", arrival: &early},
	}
	asc := Sort(records, SortSpec{Field: "arrival", Direction: Asc}, testSchema())
	assert.Equal(t, []string{"early", "late", "none"}, names(asc))

	desc := Sort(records, SortSpec{Field: "arrival", Direction: Desc}, testSchema())
	assert.Equal(t, []string{"late", "early", "none"}, names(desc))
}

func TestSort_UnknownFieldKeepsOrder(t *testing.T) {
	records := []testRecord{{id: "1", name: "b"}, {id: "2", name: "a"}}
	got := Sort(records, SortSpec{Field: "colour", Direction: Asc}, testSchema())
	assert.Equal(t, []string{"b", "a"}, names(got))
}

func TestPipeline_IsIdempotent(t *testing.T) {
	var records []testRecord
	for i := 0; i < 40; i++ {
		records = append(records, testRecord{
			id:       fmt.Sprint(i),
			name:     fmt.Sprintf("item %02d", (i*7)%13),
			category: []string{"tools", "paint"}[i%2],
			qty:      float64(i % 5),
		})
	}
	schema := testSchema()
	now := time.Now()
	c := Criteria{Search: "item", Filters: map[string]string{"category": "tools"}}
	spec := SortSpec{Field: "quantity", Direction: Desc}

	once := Sort(Filter(records, c, schema, now), spec, schema)
	twice := Sort(Filter(once, c, schema, now), spec, schema)
	assert.Equal(t, once, twice)
}

func TestParseSort(t *testing.T) {
	spec, ok := ParseSort("name-asc")
	require.True(t, ok)
	assert.Equal(t, SortSpec{Field: "name", Direction: Asc}, spec)

	spec, ok = ParseSort("reorder-point-desc")
	require.True(t, ok)
	assert.Equal(t, "reorder-point", spec.Field)
	assert.Equal(t, "reorder-point-desc", spec.String())

	for _, bad := range []string{"", "name", "name-", "-asc", "name-up"} {
		_, ok := ParseSort(bad)
		assert.False(t, ok, bad)
	}
}

func TestPaginate(t *testing.T) {
	records := make([]int, 25)
	for i := range records {
		records[i] = i
	}

	page := Paginate(records, Pagination{PageIndex: 0, PageSize: 10})
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, page.Rows)
	assert.False(t, page.HasPrevious)
	assert.True(t, page.HasNext)

	last := Paginate(records, Pagination{PageIndex: 2, PageSize: 10})
	assert.Equal(t, []int{20, 21, 22, 23, 24}, last.Rows)
	assert.True(t, last.HasPrevious)
	assert.False(t, last.HasNext)
}

func TestPaginate_ClampsAfterShrink(t *testing.T) {
	records := make([]int, 12)
	page := Paginate(records, Pagination{PageIndex: 5, PageSize: 10})
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, 1, page.PageIndex)
	assert.Len(t, page.Rows, 2)

	empty := Paginate([]int{}, Pagination{PageIndex: 3, PageSize: 10})
	assert.Equal(t, 0, empty.PageCount)
	assert.Equal(t, 0, empty.PageIndex)
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)
}

func TestPagination_WithPageSizeResetsIndex(t *testing.T) {
	p := Pagination{PageIndex: 4, PageSize: 10}.WithPageSize(50)
	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 50}, p)
}

func TestDecode_DefaultsForMissingAndInvalid(t *testing.T) {
	schema := testSchema()
	values := url.Values{
		"status":   {"exploded"},
		"sort":     {"colour-asc"},
		"page":     {"zero"},
		"pageSize": {"7"},
		"date":     {"century"},
	}
	st := Decode(values, schema)
	assert.Equal(t, DefaultState(schema), st)
	assert.Equal(t, AllValue, st.Criteria.Value("status"))
	assert.Equal(t, "name-asc", st.Sort.String())
	assert.Equal(t, 10, st.Pagination.PageSize)
}

func TestEncode_OmitsDefaults(t *testing.T) {
	schema := testSchema()
	assert.Equal(t, "", DefaultState(schema).Query(schema))

	st := DefaultState(schema)
	st.Criteria = st.Criteria.With("status", AllValue)
	assert.Equal(t, "", st.Query(schema))
}

func TestQuery_RoundTrip(t *testing.T) {
	schema := testSchema()
	st := DefaultState(schema)
	st.Criteria.Search = "wireless mouse"
	st.Criteria = st.Criteria.With("status", "low-stock").With("category", "peripherals")
	st.Criteria.Date = DateMonth
	st.Sort = SortSpec{Field: "quantity", Direction: Desc}
	st.Pagination = Pagination{PageIndex: 2, PageSize: 50}

	query := st.Query(schema)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	assert.Equal(t, "3", values.Get(ParamPage))
	assert.NotContains(t, query, "location")

	decoded := Decode(values, schema)
	assert.Equal(t, st, decoded)
}

func TestSync_ReportsChangeOnlyWhenDifferent(t *testing.T) {
	schema := testSchema()
	st := DefaultState(schema)
	st.Criteria = st.Criteria.With("category", "tools")

	query, changed := Sync("?category=tools", st, schema)
	assert.Equal(t, "category=tools", query)
	assert.False(t, changed)

	_, changed = Sync("category=tools&status=all", st, schema)
	assert.True(t, changed)

	_, changed = Sync("", st, schema)
	assert.True(t, changed)
}

func TestQuery_BlankSearchIsDefault(t *testing.T) {
	schema := testSchema()

	st := Decode(url.Values{ParamSearch: {"   "}}, schema)
	assert.Equal(t, "", st.Criteria.Search)
	assert.Equal(t, "", st.Query(schema))

	query, changed := Sync("search=+++", st, schema)
	assert.Equal(t, "", query)
	assert.True(t, changed)

	st = Decode(url.Values{ParamSearch: {"  mouse "}}, schema)
	assert.Equal(t, "search=mouse", st.Query(schema))

	st.Criteria.Search = "\t"
	assert.Equal(t, "", st.Query(schema))
}

func TestRun_LowStockScenario(t *testing.T) {
	schema := testSchema()
	records := []testRecord{
		{id: "1", name: "empty", status: "out-of-stock"},
		{id: "2", name: "low", status: "low-stock"},
		{id: "3", name: "plenty", status: "in-stock"},
	}
	st := DefaultState(schema)
	st.Criteria = st.Criteria.With("status", "low-stock")

	page := Run(records, st, schema, time.Now())
	assert.Equal(t, []string{"low"}, names(page.Rows))
	assert.Equal(t, 1, page.Total)
}
