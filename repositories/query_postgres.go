package repositories

import (
	"fmt"
	"strings"

	"freshfetch/models"
)

// sqlWhere accumulates AND-ed conditions with positional args.
type sqlWhere struct {
	conds []string
	args  []interface{}
}

func (w *sqlWhere) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *sqlWhere) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func productWhere(f models.ProductFilter) *sqlWhere {
	w := &sqlWhere{}
	if f.Category != "" {
		w.add("doc->>'category' = $%d", f.Category)
	}
	if f.Search != "" {
		w.add("doc->>'name' ILIKE $%d", likePattern(f.Search))
	}
	if f.AddedBy != "" {
		w.add("doc->'addedBy'->>'email' = $%d", normalizeEmail(f.AddedBy))
	}
	if f.ExcludeID != "" {
		w.add("id <> $%d", f.ExcludeID)
	}
	if f.MinPrice != nil {
		w.add("(doc->>'price')::numeric >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("(doc->>'price')::numeric <= $%d", *f.MaxPrice)
	}
	if f.MinRating != nil {
		w.add("(doc->>'rating')::numeric >= $%d", *f.MinRating)
	}
	return w
}

var numericSortFields = map[string]bool{
	"price":              true,
	"rating":             true,
	"stock":              true,
	"discountPercentage": true,
}

func productOrderBy(f models.ProductFilter) string {
	if !models.ProductSortFields[f.SortBy] {
		return " ORDER BY created_at DESC, id DESC"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	var expr string
	switch {
	case f.SortBy == "createdAt":
		expr = "created_at"
	case numericSortFields[f.SortBy]:
		expr = fmt.Sprintf("(doc->>'%s')::numeric", f.SortBy)
	default:
		expr = fmt.Sprintf("doc->>'%s'", f.SortBy)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", expr, dir, dir)
}

func orderWhere(f models.OrderFilter) *sqlWhere {
	w := &sqlWhere{}
	if f.Email != "" {
		w.add("doc->>'email' = $%d", normalizeEmail(f.Email))
	}
	if f.Status != "" {
		w.add("doc->>'orderStatus' = $%d", f.Status)
	}
	if f.Search != "" {
		w.add("(doc->>'email' ILIKE $%[1]d OR doc->'shippingAddress'->>'fullName' ILIKE $%[1]d OR doc->'shippingAddress'->>'city' ILIKE $%[1]d)",
			likePattern(f.Search))
	}
	return w
}

func userWhere(f models.UserFilter) *sqlWhere {
	w := &sqlWhere{}
	if f.Email != "" {
		w.add("email = $%d", normalizeEmail(f.Email))
	}
	if f.Role != "" {
		w.add("doc->>'role' = $%d", f.Role)
	}
	if f.Search != "" {
		w.add("(doc->>'name' ILIKE $%[1]d OR email ILIKE $%[1]d)", likePattern(f.Search))
	}
	return w
}

// pageClause appends LIMIT/OFFSET placeholders after the filter args.
func pageClause(w *sqlWhere, page models.Page) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), page.Limit, page.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}
