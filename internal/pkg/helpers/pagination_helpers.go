package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// normalizePage clamps a 1-based page and a size to the accepted range
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// CalculateOffsetLimit converts a 1-based page into an SQL offset and limit
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	page, size = normalizePage(page, size)
	return uint64((page - 1) * size), uint64(size)
}

// NewPaginationInfo builds the pagination block of a list response.
// An empty result still reports one page; a page past the end is clamped.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = normalizePage(page, size)

	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads the page and size query parameters
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	size, _ = strconv.Atoi(c.Query("size"))
	return normalizePage(page, size)
}
