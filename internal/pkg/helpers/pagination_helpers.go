package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/search"
)

const (
	DefaultPageSize = search.DefaultPageSize
	MaxPageSize     = search.MaxPageSize
	DefaultPage     = 1 // Default page is 1-based

	// MaxPage bounds the page query parameter; later pages are simply empty
	MaxPage = 1_000_000
)

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  search.TotalPages(int(totalItems), size),
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// PaginationFromPage converts a search.Page into the response DTO.
func PaginationFromPage[T any](p search.Page[T]) dto.PaginationInfo {
	return NewPaginationInfo(int64(p.Total), p.Page, p.Size)
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// ParseListOptions reads the shared list query parameters: q, sortBy,
// sortDir, page and size, plus an equality filter for every name in
// filterKeys that is present in the query string.
func ParseListOptions(c *gin.Context, filterKeys ...string) search.Options {
	page, size := ParsePaginationParams(c)

	equals := make(map[string]string, len(filterKeys))
	for _, key := range filterKeys {
		if v, ok := c.GetQuery(key); ok {
			equals[key] = v
		}
	}

	return search.Options{
		Criteria: search.Criteria{
			Query:  strings.TrimSpace(c.Query("q")),
			Equals: equals,
		},
		SortBy:    c.Query("sortBy"),
		Direction: search.ParseDirection(c.Query("sortDir")),
		Page:      page,
		Size:      size,
	}
}

// QueryFloat parses an optional float query parameter.
func QueryFloat(c *gin.Context, key string) *float64 {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &v
}

// WithRange appends a numeric range filter built from minKey/maxKey query params.
func WithRange(c *gin.Context, opts *search.Options, field, minKey, maxKey string) {
	lo, hi := QueryFloat(c, minKey), QueryFloat(c, maxKey)
	if lo == nil && hi == nil {
		return
	}
	opts.Criteria.Ranges = append(opts.Criteria.Ranges, search.NumberRange{Field: field, Min: lo, Max: hi})
}

// WithDateRange appends a date range filter built from fromKey/toKey query
// params in YYYY-MM-DD form. The upper bound covers the whole day.
func WithDateRange(c *gin.Context, opts *search.Options, field, fromKey, toKey string) {
	from, _ := ParseDate(c.Query(fromKey))
	to, _ := ParseDate(c.Query(toKey))
	if from == nil && to == nil {
		return
	}
	if to != nil {
		end := EndOfDay(*to)
		to = &end
	}
	opts.Criteria.Dates = append(opts.Criteria.Dates, search.DateRange{Field: field, From: from, To: to})
}

// ParseID parses a positive int64 path parameter.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
