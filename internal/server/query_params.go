package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vendly/vendly/pkg/db/option"
)

const dateOnlyLayout = "2006-01-02"

func parsePage(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("page"))
	if raw == "" {
		return 0
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// parseOrder reads sort=column and dir=asc|desc. Column whitelisting
// happens in the services.
func parseOrder(c *gin.Context) *option.Order {
	column := strings.TrimSpace(c.Query("sort"))
	if column == "" {
		return nil
	}
	direction := option.Desc
	if strings.EqualFold(strings.TrimSpace(c.Query("dir")), string(option.Asc)) {
		direction = option.Asc
	}
	return &option.Order{Column: column, Direction: direction}
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	if endOfDay {
		parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	}
	return &parsed, nil
}
