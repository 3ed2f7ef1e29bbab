package query

import (
	"context"
	"sort"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preload inlines selected columns of an association into every item.
type Preload struct {
	Association string
	Columns     []string
}

type Plan struct {
	Filter   Filter
	Params   Params
	Preloads []Preload
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate links the neighbouring pages that exist for a total row count.
func Paginate(page, limit int, total int64) Pagination {
	var p Pagination
	offset := int64(page-1) * int64(limit)
	if offset+int64(limit) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if offset > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

type Result[T any] struct {
	Items      []T
	Count      int
	Total      int64
	Pagination Pagination

	selected []string
}

// Data returns the items, reduced to the selected json fields when the request had a
// "select".
func (r *Result[T]) Data() (any, error) {
	if len(r.selected) == 0 {
		return r.Items, nil
	}
	return Project(r.Items, r.selected)
}

// Where adds the filter's conditions to db. Columns come from the schema only.
func Where(db *gorm.DB, schema *Schema, f Filter) *gorm.DB {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := schema.field(name)
		if !ok {
			continue
		}
		col := clause.Column{Name: field.Column}
		expr := f[name]
		if expr.Eq != nil {
			db = db.Where(clause.Eq{Column: col, Value: expr.Eq})
		}
		for _, op := range []Operator{OpGt, OpGte, OpLt, OpLte, OpIn} {
			v, ok := expr.Ops[op]
			if !ok {
				continue
			}
			switch op {
			case OpGt:
				db = db.Where(clause.Gt{Column: col, Value: v})
			case OpGte:
				db = db.Where(clause.Gte{Column: col, Value: v})
			case OpLt:
				db = db.Where(clause.Lt{Column: col, Value: v})
			case OpLte:
				db = db.Where(clause.Lte{Column: col, Value: v})
			case OpIn:
				list, _ := v.([]any)
				db = db.Where(clause.IN{Column: col, Values: list})
			}
		}
	}
	return db
}

// Order applies the sort keys with the primary key as the final tie-break.
func Order(db *gorm.DB, keys []SortKey) *gorm.DB {
	hasID := false
	for _, k := range keys {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: k.Column}, Desc: k.Desc})
		hasID = hasID || k.Column == "id"
	}
	if !hasID {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return db
}

// Execute counts every row matching the plan, then fetches one page of it.
func Execute[T any](ctx context.Context, db *gorm.DB, schema *Schema, plan Plan) (*Result[T], error) {
	base := Where(db.WithContext(ctx).Model(new(T)), schema, plan.Filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	q := Order(base, plan.Params.Sort).
		Offset(plan.Params.Offset()).
		Limit(plan.Params.Limit)
	if cols := plan.Params.columns(schema); cols != nil {
		q = q.Select(cols)
	}
	for _, p := range plan.Preloads {
		q = preload(q, p)
	}

	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}

	return &Result[T]{
		Items:      items,
		Count:      len(items),
		Total:      total,
		Pagination: Paginate(plan.Params.Page, plan.Params.Limit, total),
		selected:   plan.Params.Select,
	}, nil
}

// All fetches every row matching the plan in order, ignoring pagination and select.
func All[T any](ctx context.Context, db *gorm.DB, schema *Schema, plan Plan) ([]T, error) {
	q := Order(Where(db.WithContext(ctx).Model(new(T)), schema, plan.Filter), plan.Params.Sort)
	for _, p := range plan.Preloads {
		q = preload(q, p)
	}
	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func preload(db *gorm.DB, p Preload) *gorm.DB {
	if len(p.Columns) == 0 {
		return db.Preload(p.Association)
	}
	return db.Preload(p.Association, func(tx *gorm.DB) *gorm.DB {
		return tx.Select(p.Columns)
	})
}

// Project keeps only the given json keys (and "id") of each item.
func Project[T any](items []T, fields []string) ([]map[string]any, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	keep := map[string]bool{"id": true}
	for _, f := range fields {
		keep[f] = true
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		projected := make(map[string]any, len(keep))
		for k, v := range row {
			if keep[k] {
				projected[k] = v
			}
		}
		out = append(out, projected)
	}
	return out, nil
}
