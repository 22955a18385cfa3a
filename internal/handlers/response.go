package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/socialgraph/internal/middleware"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePagination(c echo.Context) pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return pagination{Page: page, Limit: limit}
}

func paginationMeta(p pagination, totalItems int64) echo.Map {
	totalPages := int(math.Ceil(float64(totalItems) / float64(p.Limit)))
	return echo.Map{
		"currentPage":     p.Page,
		"totalPages":      totalPages,
		"totalItems":      totalItems,
		"itemsPerPage":    p.Limit,
		"hasNextPage":     p.Page < totalPages,
		"hasPreviousPage": p.Page > 1,
	}
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondPage(c echo.Context, data interface{}, p pagination, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
		"meta":    paginationMeta(p, total),
	})
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func principal(c echo.Context) (permissions.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return permissions.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return p, nil
}

// httpError maps a service error to its HTTP status.
func httpError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrSelfFollow),
		errors.Is(err, services.ErrNotFollowing),
		errors.Is(err, services.ErrNotLiked):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}
