package search

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paginate returns the 1-based page of items. Pages before the first are
// treated as the first page; a non-positive size yields an empty page.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return []T{}
	}
	if page < 1 {
		page = 1
	}

	// compare in page units first so (page-1)*size cannot overflow
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := len(items)
	if size < end-start {
		end = start + size
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// TotalPages returns how many pages of size are needed for total items.
// An empty collection still has one (empty) page.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Page is one page of a filtered, sorted collection.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Size       int
	TotalPages int
}

// Options bundles the list parameters accepted by list endpoints.
type Options struct {
	Criteria  Criteria
	SortBy    string
	Direction Direction
	Page      int
	Size      int
}

// Run filters, sorts and paginates items in one pass.
func Run[T Record](items []T, opts Options) Page[T] {
	size := opts.Size
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	filtered := Filter(items, opts.Criteria)
	sorted := Sort(filtered, opts.SortBy, opts.Direction)

	return Page[T]{
		Items:      Paginate(sorted, page, size),
		Total:      len(sorted),
		Page:       page,
		Size:       size,
		TotalPages: TotalPages(len(sorted), size),
	}
}
