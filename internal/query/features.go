// Package query translates list-endpoint query parameters into bun queries:
// equality and range filters, sorting, field projection and pagination.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

var ErrBadQuery = errors.New("malformed query parameter")

// Range operators accepted as a bracketed suffix, e.g. price[gte]=100.
var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// Keys consumed by the feature pipeline itself rather than treated as filters.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

type Filter struct {
	Column   string
	Operator string // SQL comparison operator
	Value    string
}

type Sort struct {
	Column     string
	Descending bool
}

// Features is a parsed, allow-listed view of a list request's query string.
type Features struct {
	Filters []Filter
	Sorts   []Sort
	Columns []string
	Page    int
	Limit   int
}

// Parse builds Features from raw query values. The columns map is the
// allow-list from exposed parameter names to database columns; parameters
// naming unknown fields are ignored, mirroring schema-delegated validation.
// An unknown operator or a non-numeric page/limit is a bad request.
func Parse(values url.Values, columns map[string]string) (*Features, error) {
	f := &Features{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		value := vals[0]

		name, opName := splitKey(key)
		operator := "="
		if opName != "" {
			op, ok := operators[opName]
			if !ok {
				return nil, fmt.Errorf("%w: unknown operator %q", ErrBadQuery, opName)
			}
			operator = op
		}

		column, ok := columns[name]
		if !ok {
			continue
		}

		f.Filters = append(f.Filters, Filter{Column: column, Operator: operator, Value: value})
	}

	if sort := values.Get("sort"); sort != "" {
		for _, key := range strings.Split(sort, ",") {
			key = strings.TrimSpace(key)
			desc := strings.HasPrefix(key, "-")
			key = strings.TrimPrefix(key, "-")
			column, ok := columns[key]
			if !ok {
				continue
			}
			f.Sorts = append(f.Sorts, Sort{Column: column, Descending: desc})
		}
	}

	if fields := values.Get("fields"); fields != "" {
		for _, key := range strings.Split(fields, ",") {
			column, ok := columns[strings.TrimSpace(key)]
			if !ok {
				continue
			}
			f.Columns = append(f.Columns, column)
		}
		// The primary key always rides along with a projection
		if len(f.Columns) > 0 {
			f.Columns = append(f.Columns, "id")
		}
	}

	if page := values.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: page %q", ErrBadQuery, page)
		}
		f.Page = n
	}

	if limit := values.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: limit %q", ErrBadQuery, limit)
		}
		f.Limit = n
	}

	return f, nil
}

// Apply attaches the parsed features to a bun select. A page past the end of
// the result set yields an empty list, not an error.
func (f *Features) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, filter := range f.Filters {
		q = q.Where(fmt.Sprintf("? %s ?", filter.Operator), bun.Ident(filter.Column), filter.Value)
	}

	for _, sort := range f.Sorts {
		if sort.Descending {
			q = q.OrderExpr("? DESC", bun.Ident(sort.Column))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(sort.Column))
		}
	}
	if len(f.Sorts) == 0 {
		q = q.OrderExpr("created_at DESC")
	}

	if len(f.Columns) > 0 {
		q = q.Column(f.Columns...)
	}

	return q.Limit(f.Limit).Offset((f.Page - 1) * f.Limit)
}

// splitKey separates "price[gte]" into ("price", "gte"); a plain key has no operator
func splitKey(key string) (name, op string) {
	open := strings.IndexByte(key, '[')
	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}
