package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaginationParams are the list-endpoint query knobs. Sort names a bson
// field, so it must match the document tags, not the JSON ones.
type PaginationParams struct {
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"page_size" form:"page_size"`
	Sort     string `json:"sort" form:"sort"`
	Order    string `json:"order" form:"order"`
	Search   string `json:"search" form:"search"`
}

type PaginationMeta struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// GetPaginationParams reads page/page_size/sort/order/search from the query
// string, clamping page_size to the configured bounds.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	p := &PaginationParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", DefaultPageSize),
		Sort:     c.DefaultQuery("sort", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
		Search:   c.Query("search"),
	}

	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = clamp(p.PageSize, MinPageSize, MaxPageSize)
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *PaginationParams) GetSkip() int {
	return (p.Page - 1) * p.PageSize
}

func (p *PaginationParams) GetLimit() int {
	return p.PageSize
}

// GetSortOptions translates the params into Mongo find options.
func (p *PaginationParams) GetSortOptions() *options.FindOptions {
	order := -1
	if p.Order == "asc" {
		order = 1
	}
	return options.Find().
		SetSkip(int64(p.GetSkip())).
		SetLimit(int64(p.GetLimit())).
		SetSort(bson.D{{Key: p.Sort, Value: order}})
}

// GetSearchFilter builds a case-insensitive substring match across the
// given fields, or an empty filter when there is no search term.
func (p *PaginationParams) GetSearchFilter(fields []string) bson.M {
	if p.Search == "" || len(fields) == 0 {
		return bson.M{}
	}

	clauses := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, bson.M{field: bson.M{"$regex": p.Search, "$options": "i"}})
	}
	return bson.M{"$or": clauses}
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	pages := int(total) / params.PageSize
	if int(total)%params.PageSize != 0 {
		pages++
	}

	return &PaginationMeta{
		Page:        params.Page,
		PageSize:    params.PageSize,
		Total:       total,
		TotalPages:  pages,
		HasNext:     params.Page < pages,
		HasPrevious: params.Page > 1,
	}
}
