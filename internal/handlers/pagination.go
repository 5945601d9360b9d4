package handlers

import (
	"math"
	"strconv"

	"billgen/internal/apperr"
)

const maxPageLimit = 100

// parsePaginationParams returns zeros unless both page and limit are given.
func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	if pageStr == "" || limitStr == "" {
		return 0, 0, nil
	}

	page, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		return 0, 0, apperr.Validation("invalid pagination", "page must be a positive integer")
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		return 0, 0, apperr.Validation("invalid pagination", "limit must be a positive integer")
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page > math.MaxInt64/limit {
		return 0, 0, apperr.Validation("invalid pagination", "page is out of range")
	}

	return page, limit, nil
}

func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
