package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetrack-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Enabled bool
	Page    int
	Limit   int
	Offset  int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams extracts and validates pagination parameters from the request.
// Pagination is only enabled when the caller sends page or limit.
func GetPaginationParams(c *gin.Context) PaginationParams {
	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Enabled: true,
		Page:    page,
		Limit:   limit,
		Offset:  offset,
	}
}

// RespondList writes items as a bare JSON array, or wrapped with pagination
// metadata when the request asked for a page.
func RespondList[T any](c *gin.Context, status int, items []T, params PaginationParams, total int64) {
	if items == nil {
		items = []T{}
	}
	if !params.Enabled {
		c.JSON(status, items)
		return
	}
	c.JSON(status, gin.H{
		"results": items,
		"pagination": PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
