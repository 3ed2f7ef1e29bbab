package query

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25

	// upper bounds keep (page-1)*limit well inside int
	MaxPage  = 1_000_000
	MaxLimit = 100
)

type SortKey struct {
	Column string
	Desc   bool
}

// Params holds the non-filter stages of a list request.
type Params struct {
	Select []string
	Sort   []SortKey
	Page   int
	Limit  int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseParams reads select, sort, page and limit. Bad page or limit values fall back to
// the defaults and oversized ones are clamped to MaxPage and MaxLimit; unknown select or
// sort fields are rejected.
func ParseParams(values map[string][]string, schema *Schema) (Params, error) {
	p := Params{
		Page:  positiveInt(first(values, "page"), DefaultPage, MaxPage),
		Limit: positiveInt(first(values, "limit"), DefaultLimit, MaxLimit),
	}

	if raw := first(values, "select"); raw != "" {
		seen := map[string]bool{}
		for _, name := range splitList(raw) {
			if _, ok := schema.field(name); !ok {
				return Params{}, apperr.Validationf("Cannot select unknown field '%s'", name)
			}
			if !seen[name] {
				seen[name] = true
				p.Select = append(p.Select, name)
			}
		}
	}

	sortRaw := first(values, "sort")
	if sortRaw == "" {
		sortRaw = schema.DefaultSort
	}
	for _, entry := range splitList(sortRaw) {
		desc := strings.HasPrefix(entry, "-")
		name := strings.TrimPrefix(strings.TrimPrefix(entry, "-"), "+")
		field, ok := schema.field(name)
		if !ok {
			return Params{}, apperr.Validationf("Cannot sort by unknown field '%s'", name)
		}
		p.Sort = append(p.Sort, SortKey{Column: field.Column, Desc: desc})
	}

	return p, nil
}

// columns maps the selected fields to their columns plus the schema's fixed columns.
func (p Params) columns(schema *Schema) []string {
	if len(p.Select) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var cols []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, c := range schema.Always {
		add(c)
	}
	for _, name := range p.Select {
		add(schema.Fields[name].Column)
	}
	return cols
}

func first(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func positiveInt(raw string, def, upper int) int {
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		return upper
	case err != nil || n <= 0:
		return def
	case n > upper:
		return upper
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
