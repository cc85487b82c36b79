package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePageParams extracts the offset pagination contract from the query
// string: page, page_size, sort, order.
func ParsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	pageSize, err := ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
	if err != nil {
		return pagination.Params{}, err
	}

	ascending := false
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("order"))) {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "order must be asc or desc").WithDetails(map[string]any{"field": "order"})
	}

	return pagination.Params{
		Page:      page,
		PageSize:  pageSize,
		SortKey:   strings.TrimSpace(r.URL.Query().Get("sort")),
		Ascending: ascending,
	}, nil
}

// ParsePathUUID reads a uuid path segment already extracted by the router.
func ParsePathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a valid uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
