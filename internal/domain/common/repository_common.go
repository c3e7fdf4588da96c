package common

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page is an offset page request.
type Page struct {
	Number  int // 1-based
	PerPage int // <= 0 means adapter default
}

// PageResult is a page of items (generic over the item type).
type PageResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
}

// NormalizePage clamps a page request and returns (number, perPage, offset).
func NormalizePage(number, perPage, defaultPerPage, maxPerPage int) (int, int, int) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	if number <= 0 {
		number = 1
	}
	return number, perPage, (number - 1) * perPage
}

// ComputeTotalPages returns ceil(total / perPage).
func ComputeTotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate slices an in-memory list into a PageResult.
func Paginate[T any](all []T, page Page, defaultPerPage, maxPerPage int) PageResult[T] {
	number, perPage, offset := NormalizePage(page.Number, page.PerPage, defaultPerPage, maxPerPage)

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	items := make([]T, 0, end-offset)
	items = append(items, all[offset:end]...)

	return PageResult[T]{
		Items:      items,
		TotalCount: total,
		TotalPages: ComputeTotalPages(total, perPage),
		Page:       number,
		PerPage:    perPage,
	}
}
