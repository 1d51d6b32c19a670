// Package search implements the shared listing query builder used by the
// projects and restaurants endpoints: free-text filtering (exact or tokenized),
// counting, ordering and pagination over a set of searchable text columns.
package search

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"
)

const (
	MinLimit     = 1
	MaxLimit     = 50
	DefaultLimit = 10
)

var (
	ErrInvalidPage    = errors.New("page must be >= 1")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 50")
	ErrInvalidSortBy  = errors.New("unsupported sort field")
	ErrInvalidSortDir = errors.New("sort direction must be asc or desc")
)

// sortable whitelists ORDER BY targets; identifiers are interpolated into SQL.
var sortable = map[string]bool{
	"id":         true,
	"created_at": true,
}

// Params describes one listing request.
type Params struct {
	Query      string
	Page       int
	Limit      int
	SortBy     string
	SortDir    string
	ExactMatch bool
}

// Result is the uniform listing payload echoed back to clients.
type Result[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// Normalize fills zero-valued fields with defaults.
func (p *Params) Normalize() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = "id"
	}
	if p.SortDir == "" {
		p.SortDir = "desc"
	}
}

// Validate enforces the boundary contract before the query is built.
func (p Params) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.Limit < MinLimit || p.Limit > MaxLimit {
		return ErrInvalidLimit
	}
	if !sortable[p.SortBy] {
		return ErrInvalidSortBy
	}
	if p.SortDir != "asc" && p.SortDir != "desc" {
		return ErrInvalidSortDir
	}
	return nil
}

// Tokens splits a query on whitespace and discards tokens of length <= 1.
func Tokens(query string) []string {
	fields := strings.Fields(strings.TrimSpace(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Pages returns ceil(total/limit); 0 when total is 0.
func Pages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Run executes the filtered, counted, paginated listing over the given
// searchable columns and returns the items of the requested page.
func Run[T any](db *gorm.DB, columns []string, p Params) (Result[T], error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return Result[T]{}, err
	}

	where, args := buildFilter(p, columns)

	countQ := db.Model(new(T))
	if where != "" {
		countQ = countQ.Where(where, args...)
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return Result[T]{}, err
	}

	items := []T{}
	listQ := db.Model(new(T))
	if where != "" {
		listQ = listQ.Where(where, args...)
	}
	order := p.SortBy + " " + p.SortDir
	if err := listQ.Order(order).Offset((p.Page - 1) * p.Limit).Limit(p.Limit).Find(&items).Error; err != nil {
		return Result[T]{}, err
	}

	return Result[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: Pages(total, p.Limit),
	}, nil
}

// buildFilter translates the query into a WHERE fragment. Exact match compares
// whole lower-cased fields (OR across columns); tokenized match requires every
// token as a case-insensitive substring within one column (AND across tokens,
// OR across columns). An empty query or all-dropped tokens yields no filter.
func buildFilter(p Params, columns []string) (string, []interface{}) {
	query := strings.TrimSpace(p.Query)
	if query == "" || len(columns) == 0 {
		return "", nil
	}

	if p.ExactMatch {
		cleaned := strings.ToLower(query)
		clauses := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, "LOWER("+col+") = ?")
			args = append(args, cleaned)
		}
		return "(" + strings.Join(clauses, " OR ") + ")", args
	}

	tokens := Tokens(query)
	if len(tokens) == 0 {
		return "", nil
	}
	perColumn := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)*len(tokens))
	for _, col := range columns {
		sub := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			sub = append(sub, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(tok)+"%")
		}
		perColumn = append(perColumn, "("+strings.Join(sub, " AND ")+")")
	}
	return "(" + strings.Join(perColumn, " OR ") + ")", args
}
