package api

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page carries the list-query parameters shared by every paged endpoint.
type Page struct {
	Number        int
	Size          int
	SortBy        string
	SortDirection string
}

// PagedResponse is the envelope every list endpoint returns.
type PagedResponse struct {
	PagesCount int `json:"pagesCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	Items      any `json:"items"`
}

func newPagedResponse(page Page, totalCount int, items any) PagedResponse {
	pagesCount := 0
	if totalCount > 0 {
		pagesCount = (totalCount + page.Size - 1) / page.Size
	}
	return PagedResponse{
		PagesCount: pagesCount,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalCount: totalCount,
		Items:      items,
	}
}

// parsePage reads pageNumber/pageSize/sortBy/sortDirection from the query,
// falling back to defaults on anything missing or malformed. Sort columns are
// whitelisted at the repository layer.
func parsePage(r *http.Request, defaultSortBy string) Page {
	q := r.URL.Query()

	page := Page{
		Number:        defaultPage,
		Size:          defaultPageSize,
		SortBy:        defaultSortBy,
		SortDirection: "desc",
	}

	if n, err := strconv.Atoi(q.Get("pageNumber")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil && n > 0 && n <= maxPageSize {
		page.Size = n
	}
	if sortBy := q.Get("sortBy"); sortBy != "" {
		page.SortBy = sortBy
	}
	if dir := strings.ToLower(q.Get("sortDirection")); dir == "asc" {
		page.SortDirection = "asc"
	}

	return page
}
