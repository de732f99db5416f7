package registry

import (
	"fmt"
	"strconv"
)

// Page is a single page of descriptors with an optional cursor for fetching
// the next page. Items is never nil.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// paginate slices a descriptor list by an opaque offset cursor. A nil, empty,
// or malformed cursor restarts from the beginning rather than failing; the
// cursor is a hint, not trusted input worth erroring over.
func paginate[T any](all []T, cursor *string, pageSize int) Page[T] {
	start := parseCursor(cursor)
	if start < 0 || start > len(all) {
		start = 0
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	p := Page[T]{Items: items}
	if end < len(all) {
		next := fmt.Sprintf("%d", end)
		p.NextCursor = &next
	}
	return p
}

func parseCursor(cursor *string) int {
	if cursor == nil || *cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(*cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
