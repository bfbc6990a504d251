package pipeline

// Page is one slice of a filtered, sorted result list. StartIndex and
// EndIndex are 0-based half-open bounds into the full list, suitable for
// rendering "Showing X–Y of N".
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// Paginate slices items into fixed-size pages. TotalPages is always at
// least 1, so an empty list is representable as "page 1 of 1, 0 items"
// without a special case. The engine does not clamp out-of-range pages:
// callers reset to page 1 whenever the upstream list changes, and an
// out-of-range request simply yields an empty page.
func Paginate[T any](items []T, pageSize, currentPage int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}

	n := len(items)
	totalPages := (n + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (currentPage - 1) * pageSize
	if start < 0 || start > n {
		return Page[T]{
			Items:      []T{},
			TotalItems: n,
			TotalPages: totalPages,
			StartIndex: n,
			EndIndex:   n,
		}
	}

	end := start + pageSize
	if end > n {
		end = n
	}

	return Page[T]{
		Items:      items[start:end],
		TotalItems: n,
		TotalPages: totalPages,
		StartIndex: start,
		EndIndex:   end,
	}
}
