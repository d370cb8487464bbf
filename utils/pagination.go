package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads ?page= and ?limit= with sane bounds.
func ParsePage(c *fiber.Ctx) Page {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Page{Page: page, Limit: limit}
}

func Paginated(items interface{}, total int64, p Page) fiber.Map {
	return fiber.Map{
		"data":  items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}
