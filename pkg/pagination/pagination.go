package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the resolved page window for a list query.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Metadata is returned alongside paginated collections.
type Metadata struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Extract reads page and limit from the query string using the package defaults.
func Extract(c *gin.Context) Params {
	return New(c.Query("page"), c.Query("limit"))
}

// New resolves raw page/limit values. Missing, malformed or non-positive values fall back to defaults.
func New(rawPage, rawLimit string) Params {
	page := atoiOr(rawPage, DefaultPage)
	limit := atoiOr(rawLimit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Scope applies the window to a gorm query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

// Meta builds response metadata for total matching rows.
func (p Params) Meta(total int64) Metadata {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Metadata{
		TotalItems:  total,
		CurrentPage: p.Page,
		PageSize:    p.Limit,
		TotalPages:  pages,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}

func atoiOr(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
