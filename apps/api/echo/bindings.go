package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindPagination reads ?limit=&offset=. A missing or invalid limit leaves the result unpaginated.
func bindPagination(ctx echo.Context) core.Pagination {
	var p core.Pagination
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && limit > 0 {
		p.Limit = limit
		p.Paginated = true
	}
	if offset, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && offset > 0 {
		p.Offset = offset
	}
	return p
}

// PageResponse is the envelope of a paginated list.
type PageResponse struct {
	Count    int         `json:"count"`
	First    *string     `json:"first"`
	Last     *string     `json:"last"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// respondList sends results as a plain list, or wrapped in a PageResponse when the client asked for a limit.
func respondList(ctx echo.Context, page core.Pagination, count int, results interface{}) error {
	if !page.Paginated {
		return ctx.JSON(http.StatusOK, results)
	}

	limit, offset := page.Window()
	link := func(off int) *string {
		u := pageURL(ctx, limit, off)
		return &u
	}

	resp := PageResponse{Count: count, Results: results}
	if offset > 0 {
		resp.First = link(0)
		resp.Previous = link(offset - limit)
	}
	if offset+limit < count {
		resp.Next = link(offset + limit)
		resp.Last = link(count - limit)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// pageURL rebuilds the absolute request URL with the given window. Offsets <= 0 are dropped.
func pageURL(ctx echo.Context, limit, offset int) string {
	req := ctx.Request()
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Del("offset")
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	u := url.URL{Scheme: ctx.Scheme(), Host: req.Host, Path: req.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

// pathID parses an int64 path parameter.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryStrings splits a comma separated query parameter.
func queryStrings(ctx echo.Context, name string, upper bool) []string {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil
	}
	var vals []string
	for _, v := range strings.Split(val, ",") {
		if v = strings.TrimSpace(v); v != "" {
			if upper {
				v = strings.ToUpper(v)
			}
			vals = append(vals, v)
		}
	}
	return vals
}

// queryIDs parses a comma separated list of IDs, skipping invalid ones.
func queryIDs(ctx echo.Context, name string) []int64 {
	var ids []int64
	for _, v := range queryStrings(ctx, name, false) {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// queryBool returns nil when the parameter is missing or is not a boolean.
func queryBool(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &b
}

// queryTime accepts RFC 3339 datetimes and plain dates.
func queryTime(ctx echo.Context, name string) (time.Time, bool) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
