// Package pagination slices an ordered collection into fixed-size pages.
package pagination

import (
	"strconv"
	"strings"
)

// PageSize is the number of items shown per page.
const PageSize = 10

// Page is one bounded slice of a collection plus navigation metadata.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
}

// Paginate returns the requested page of items. The page argument comes
// straight from the request: a non-numeric or sub-1 value clamps to the first
// page, a too-large value clamps to the last. An empty collection yields a
// single empty page.
func Paginate[T any](items []T, page string) Page[T] {
	count := len(items)
	numPages := (count + PageSize - 1) / PageSize
	if numPages == 0 {
		numPages = 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil || n < 1 {
		n = 1
	}
	if n > numPages {
		n = numPages
	}
	lo := (n - 1) * PageSize
	hi := lo + PageSize
	if lo > count {
		lo = count
	}
	if hi > count {
		hi = count
	}
	return Page[T]{Items: items[lo:hi], Number: n, NumPages: numPages, Count: count}
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p Page[T]) PreviousPage() int { return p.Number - 1 }

func (p Page[T]) NextPage() int { return p.Number + 1 }
