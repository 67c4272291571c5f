package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/corretora/pkg/query"
)

// Query parameter names. The back office links use the Portuguese forms;
// API clients use the English ones. The first non-empty name wins.
var (
	pageParams     = []string{"page", "pagina"}
	pageSizeParams = []string{"page_size", "per_page", "por_pagina"}
	searchParams   = []string{"search", "busca"}
	sortParams     = []string{"sort", "ordem"}
)

// PageRequest asks for one page of a collection, optionally narrowed by a
// free-text search and ordered by view fields.
type PageRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   *string           `json:"search,omitempty"`
	Sort     []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, cfg.MaxPageSize],
// using cfg.DefaultPageSize when unset. A blank search is dropped.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
	if r.Search != nil {
		if s := strings.TrimSpace(*r.Search); s != "" {
			r.Search = &s
		} else {
			r.Search = nil
		}
	}
}

// Offset is the number of rows before the requested page.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, search and sort (or their
// aliases) from values and normalizes the result. Sort is comma-separated
// with a "-" prefix for descending; unparsable numbers fall back to defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(lookup(values, pageParams))
	pageSize, _ := strconv.Atoi(lookup(values, pageSizeParams))

	var search *string
	if s := lookup(values, searchParams); s != "" {
		search = &s
	}

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		Sort:     query.ParseSortFields(lookup(values, sortParams)),
	}

	req.Normalize(cfg)
	return req
}

func lookup(values url.Values, names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// PageResult is one page of data plus the request that produced it, so list
// screens can render their search box and sort headers from the response.
type PageResult[T any] struct {
	Data       []T               `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	HasNext    bool              `json:"has_next"`
	Search     *string           `json:"search,omitempty"`
	Sort       []query.SortField `json:"sort,omitempty"`
}

// NewPageResult wraps data for req. An empty result still reports one page
// so clients can always render page 1.
func NewPageResult[T any](data []T, total int, req PageRequest) PageResult[T] {
	totalPages := 1
	if req.PageSize > 0 && total > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		Search:     req.Search,
		Sort:       req.Sort,
	}
}
