package search

import "strconv"

// MaxVisiblePages is the longest page strip rendered without gaps.
const MaxVisiblePages = 5

// windowRadius is how many neighbours of the current page are shown.
const windowRadius = 2

// PageItem is one entry of a page strip: a page number or a gap marker.
type PageItem struct {
	Number int
	Gap    bool
}

// Ellipsis marks skipped pages. It never carries a page number.
var Ellipsis = PageItem{Gap: true}

func (p PageItem) String() string {
	if p.Gap {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageSequence returns the page strip for the given result window. Up to
// MaxVisiblePages pages are listed in full; longer ranges show the first
// page, a window around current and the last page, with Ellipsis between
// non-adjacent parts. current is clamped into range for display only.
func PageSequence(total, pageSize, current int) []PageItem {
	pages := TotalPages(total, pageSize)
	if pages == 0 {
		return nil
	}
	current = min(max(current, 1), pages)

	if pages <= MaxVisiblePages {
		seq := make([]PageItem, 0, pages)
		for i := 1; i <= pages; i++ {
			seq = append(seq, PageItem{Number: i})
		}
		return seq
	}

	start := max(current-windowRadius, 1)
	end := min(current+windowRadius, pages)

	seq := make([]PageItem, 0, end-start+5)
	if start > 1 {
		seq = append(seq, PageItem{Number: 1})
		if start > 2 {
			seq = append(seq, Ellipsis)
		}
	}
	for i := start; i <= end; i++ {
		seq = append(seq, PageItem{Number: i})
	}
	if end < pages {
		if end < pages-1 {
			seq = append(seq, Ellipsis)
		}
		seq = append(seq, PageItem{Number: pages})
	}
	return seq
}

// ItemRange returns the 1-based positions of the first and last items shown
// on page. Both are zero when the page holds nothing.
func ItemRange(total, pageSize, page int) (first, last int) {
	if total <= 0 || pageSize < 1 || page < 1 {
		return 0, 0
	}
	first = (page-1)*pageSize + 1
	if first > total {
		return 0, 0
	}
	last = min(page*pageSize, total)
	return first, last
}
