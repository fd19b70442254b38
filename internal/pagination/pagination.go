package pagination

import (
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultPageSize is the number of items on a feed page.
const DefaultPageSize = 10

// Page is one slice of an ordered query.
type Page[T any] struct {
	Number             int   `json:"number"`
	NumPages           int   `json:"num_pages"`
	Count              int64 `json:"count"`
	HasNext            bool  `json:"has_next"`
	HasPrevious        bool  `json:"has_previous"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
	Items              []T   `json:"items"`
}

// HasOtherPages is true when there is a page to link to.
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext || p.HasPrevious
}

// PageRange lists every page number, for page links.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// NumPages returns how many pages count items take. An empty list still has
// one page.
func NumPages(count int64, size int) int {
	if count <= 0 {
		return 1
	}
	return int((count + int64(size) - 1) / int64(size))
}

// PageNumber turns the raw page query value into a valid page number.
// Anything that is not a number selects the first page; numbers outside
// [1, numPages] are clamped.
func PageNumber(raw string, numPages int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	if n > numPages {
		return numPages
	}
	return n
}

// Paginate counts the rows matched by tx, then loads the requested page.
// Ordering and preloads go in load so they stay out of the count query.
func Paginate[T any](tx *gorm.DB, raw string, size int, load ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	if size <= 0 {
		size = DefaultPageSize
	}

	var count int64
	var model T
	if err := tx.Session(&gorm.Session{}).Model(&model).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "count page items")
	}

	numPages := NumPages(count, size)
	number := PageNumber(raw, numPages)

	items := make([]T, 0, size)
	if count > 0 {
		offset := (number - 1) * size
		if err := tx.Session(&gorm.Session{}).Scopes(load...).Offset(offset).Limit(size).Find(&items).Error; err != nil {
			return nil, errors.Wrap(err, "load page items")
		}
	}

	page := &Page[T]{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Items:       items,
	}
	if page.HasNext {
		page.NextPageNumber = number + 1
	}
	if page.HasPrevious {
		page.PreviousPageNumber = number - 1
	}
	return page, nil
}
