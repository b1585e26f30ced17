package domain

// PagedResult is the paging envelope returned by the property API.
type PagedResult[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (r *PagedResult[T]) TotalPages() int {
	if r == nil || r.PageSize < 1 || r.Total <= 0 {
		return 0
	}
	return (r.Total + r.PageSize - 1) / r.PageSize
}
