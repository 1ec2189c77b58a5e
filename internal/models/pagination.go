package models

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives page counts from a total.
func NewPagination(page, size, total int) *Pagination {
	if size <= 0 {
		size = 20
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return &Pagination{Page: page, PageSize: size, TotalItems: total, TotalPages: pages}
}
