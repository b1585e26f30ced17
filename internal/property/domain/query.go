package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery holds the property search parameters. A nil filter means
// "no filter", which is different from filtering on an empty string.
type SearchQuery struct {
	Name     *string
	Address  *string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PageSize int
}

func DefaultQuery() SearchQuery {
	return SearchQuery{Page: DefaultPage, PageSize: DefaultPageSize}
}

// HasFilters reports whether any of the text or price filters is set.
func (q SearchQuery) HasFilters() bool {
	return q.Name != nil || q.Address != nil || q.MinPrice != nil || q.MaxPrice != nil
}

// Values encodes q the way the property API expects it on the query string.
// Absent and blank text filters are omitted.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if !blank(q.Name) {
		v.Set("name", *q.Name)
	}
	if !blank(q.Address) {
		v.Set("address", *q.Address)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", formatPrice(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", formatPrice(*q.MaxPrice))
	}
	return v
}

// Key is the canonical serialised form of q. Two queries with the same key
// produce the same request.
func (q SearchQuery) Key() string {
	return q.Values().Encode()
}

func (q SearchQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidQuery, q.Page)
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: pageSize must be between 1 and %d, got %d", ErrInvalidQuery, MaxPageSize, q.PageSize)
	}
	return nil
}

func (q SearchQuery) String() string {
	return q.Key()
}

// ParseSearchQuery builds a query from request parameters. Empty text
// filters and unparsable prices are dropped; bad paging falls back to the
// defaults.
func ParseSearchQuery(v url.Values) SearchQuery {
	q := DefaultQuery()
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page >= 1 {
		q.Page = page
	}
	if size, err := strconv.Atoi(v.Get("pageSize")); err == nil && size >= 1 {
		q.PageSize = min(size, MaxPageSize)
	}
	q.Name = ParseText(v.Get("name"))
	q.Address = ParseText(v.Get("address"))
	q.MinPrice = ParsePrice(v.Get("minPrice"))
	q.MaxPrice = ParsePrice(v.Get("maxPrice"))
	return q
}

// ParseText returns nil for an empty or whitespace-only string.
func ParseText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// ParsePrice returns nil when s is not a finite number.
func ParsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
