package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy renders orderings as an SQL "ORDER BY" clause, keeping only the fields in allowed.
// fallback is used when no ordering remains.
func OrderBy(orderings []DBOrdering, allowed map[string]string, fallback string) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := allowed[ord.Field]; ok {
			parts = append(parts, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(parts) == 0 {
		if fallback == "" {
			return ""
		}
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// DefaultPageSize caps list queries made without an explicit limit.
const DefaultPageSize = 100

// Pagination is a limit/offset window over a query.
// Paginated is false when the client did not ask for a limit; the result is then a plain list capped at DefaultPageSize.
// All disables the window, for internal callers that need every row.
type Pagination struct {
	Limit     int
	Offset    int
	Paginated bool
	All       bool
}

// AllRows selects every row of a query.
var AllRows = Pagination{All: true}

// Window returns the effective limit and offset. A zero limit means no limit.
func (p Pagination) Window() (limit, offset int) {
	if p.All {
		return 0, 0
	}
	if !p.Paginated || p.Limit <= 0 {
		return DefaultPageSize, 0
	}
	if p.Offset < 0 {
		return p.Limit, 0
	}
	return p.Limit, p.Offset
}
