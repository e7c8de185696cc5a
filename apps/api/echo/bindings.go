package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/vitrine/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Pagination slices a full result set; out-of-range pages yield empty results.
type Pagination struct {
	Page     int
	PageSize int
}

func (p *Pagination) Bind(ctx echo.Context) {
	p.Page = 1
	p.PageSize = defaultPageSize

	if v, err := strconv.Atoi(ctx.QueryParam(pageParam)); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam(pageSizeParam)); err == nil && v > 0 {
		p.PageSize = v
		if p.PageSize > maxPageSize {
			p.PageSize = maxPageSize
		}
	}
}

// Bounds returns the [lo, hi) slice indices for a result set of n items.
func (p *Pagination) Bounds(n int) (int, int) {
	lo := (p.Page - 1) * p.PageSize
	if lo > n {
		lo = n
	}
	hi := lo + p.PageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

// PaginatedResponse is the envelope for paginated listings.
type PaginatedResponse struct {
	Count    int         `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}
