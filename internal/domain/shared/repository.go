package shared

// Page size bounds for list queries
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter holds the paging, ordering and search options common to list queries.
// OrderBy is checked against a per-repository whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns the first page, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc"}
}

// Limit returns the page size clamped to [1, MaxPageSize]; zero means default
func (f Filter) Limit() int {
	if f.PageSize < 1 {
		return DefaultPageSize
	}
	return min(f.PageSize, MaxPageSize)
}

// Offset returns the number of rows before the filter's page
func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.Limit()
}

// Paginated is one page of a list result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items with the page metadata for total matches
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	pageSize = max(pageSize, 1)
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
