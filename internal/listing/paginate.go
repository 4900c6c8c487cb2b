package listing

// Pagination selects one page of a collection. PageIndex is zero-based.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// WithPageSize switches the page size and goes back to the first page.
func (p Pagination) WithPageSize(size int) Pagination {
	return Pagination{PageIndex: 0, PageSize: size}
}

// Clamp pulls PageIndex back onto the last page when total shrank below it.
func (p Pagination) Clamp(total int) Pagination {
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	count := PageCount(total, p.PageSize)
	if p.PageIndex >= count {
		p.PageIndex = max(0, count-1)
	}
	return p
}

// PageCount is ceil(total / size).
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Page is one slice of an ordered collection plus navigation metadata.
type Page[T any] struct {
	Rows        []T  `json:"rows"`
	PageIndex   int  `json:"page_index"`
	PageSize    int  `json:"page_size"`
	PageCount   int  `json:"page_count"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Paginate slices records to the page selected by p, clamping out-of-range indexes.
func Paginate[T any](records []T, p Pagination) Page[T] {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSizes[0]
	}
	total := len(records)
	p = p.Clamp(total)
	count := PageCount(total, p.PageSize)

	start := min(p.PageIndex*p.PageSize, total)
	end := min(start+p.PageSize, total)
	rows := make([]T, end-start)
	copy(rows, records[start:end])

	return Page[T]{
		Rows:        rows,
		PageIndex:   p.PageIndex,
		PageSize:    p.PageSize,
		PageCount:   count,
		Total:       total,
		HasPrevious: p.PageIndex > 0,
		HasNext:     p.PageIndex < count-1,
	}
}
