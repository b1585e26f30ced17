package search

import (
	"strings"
	"sync"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

// Field is one optional member of a Patch. The zero value leaves the
// current query untouched.
type Field[T any] struct {
	touched bool
	value   *T
}

// Set returns a field that replaces the current value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{touched: true, value: &v}
}

// Unset returns a field that removes the current filter.
func Unset[T any]() Field[T] {
	return Field[T]{touched: true}
}

// FromPtr maps nil to Unset and a non-nil pointer to Set.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Unset[T]()
	}
	return Set(*p)
}

func (f Field[T]) Touched() bool { return f.touched }

func (f Field[T]) apply(cur *T) *T {
	if !f.touched {
		return cur
	}
	return f.value
}

// Patch is a partial update of a SearchQuery.
type Patch struct {
	Name     Field[string]
	Address  Field[string]
	MinPrice Field[float64]
	MaxPrice Field[float64]
	Page     *int
	PageSize *int
}

// Page is shorthand for a patch that only moves to page n.
func Page(n int) Patch {
	return Patch{Page: &n}
}

func (p Patch) touchesFilters() bool {
	return p.Name.touched || p.Address.touched || p.MinPrice.touched || p.MaxPrice.touched
}

// Apply merges p over q. Changing any filter without naming a page
// re-anchors the query on page 1.
func (p Patch) Apply(q domain.SearchQuery) domain.SearchQuery {
	next := q
	next.Name = normaliseText(p.Name.apply(q.Name))
	next.Address = normaliseText(p.Address.apply(q.Address))
	next.MinPrice = p.MinPrice.apply(q.MinPrice)
	next.MaxPrice = p.MaxPrice.apply(q.MaxPrice)

	switch {
	case p.Page != nil:
		next.Page = max(*p.Page, 1)
	case p.touchesFilters():
		next.Page = 1
	}
	if p.PageSize != nil && *p.PageSize >= 1 {
		next.PageSize = *p.PageSize
	}
	return next
}

func normaliseText(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// QueryStore owns the current search query. All writes go through Update.
type QueryStore struct {
	mu    sync.RWMutex
	query domain.SearchQuery
}

func NewQueryStore(initial domain.SearchQuery) *QueryStore {
	if initial.Page < 1 {
		initial.Page = domain.DefaultPage
	}
	if initial.PageSize < 1 {
		initial.PageSize = domain.DefaultPageSize
	}
	initial.Name = normaliseText(initial.Name)
	initial.Address = normaliseText(initial.Address)
	return &QueryStore{query: initial}
}

func (s *QueryStore) Query() domain.SearchQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *QueryStore) Update(p Patch) domain.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = p.Apply(s.query)
	return s.query
}

// NextPage advances one page unless the current page is already the last
// one for total results. It reports whether the query changed.
func (s *QueryStore) NextPage(total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.Page >= TotalPages(total, s.query.PageSize) {
		return false
	}
	s.query = Page(s.query.Page + 1).Apply(s.query)
	return true
}

func (s *QueryStore) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.Page <= 1 {
		return false
	}
	s.query = Page(s.query.Page - 1).Apply(s.query)
	return true
}

// GoToPage does not clamp n against the result set.
func (s *QueryStore) GoToPage(n int) domain.SearchQuery {
	return s.Update(Page(n))
}

// Clear drops every filter and returns to page 1. The page size is kept.
func (s *QueryStore) Clear() domain.SearchQuery {
	return s.Update(Patch{
		Name:     Unset[string](),
		Address:  Unset[string](),
		MinPrice: Unset[float64](),
		MaxPrice: Unset[float64](),
		Page:     ptr(1),
	})
}

func ptr[T any](v T) *T { return &v }
