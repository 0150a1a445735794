package utils

import (
	"fmt"
	"net/url"
	"strconv"

	"freshfetch/models"
)

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func BuildMeta(page models.Page, total int64) models.PaginationMeta {
	return models.PaginationMeta{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: total,
		TotalPages: TotalPages(total, page.Limit),
	}
}

// BuildLinks keeps the caller's query string and only rewrites page and limit.
func BuildLinks(path string, query url.Values, meta models.PaginationMeta) models.PaginationLinks {
	link := func(p int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(p))
		q.Set("limit", strconv.Itoa(meta.Limit))
		return fmt.Sprintf("%s?%s", path, q.Encode())
	}

	links := models.PaginationLinks{Self: link(meta.Page)}
	if meta.Page < meta.TotalPages {
		links.Next = link(meta.Page + 1)
	}
	if meta.Page > 1 {
		links.Prev = link(meta.Page - 1)
	}
	return links
}
