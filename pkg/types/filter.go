package types

// Filter - параметры списка из query-строки:
// ?search=...&sort[created]=desc&filter[status]=new,sent&filter[score__gte]=100&limit=10&page=1&withPagination=true
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// NewPagination считает число страниц с округлением вверх.
func NewPagination(total uint64, page, limit int) Pagination {
	p := Pagination{TotalCount: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return p
}
