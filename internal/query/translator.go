package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
)

type Operator string

const (
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

func (o Operator) valid() bool {
	switch o {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return true
	}
	return false
}

// Expr is the condition on one field. Eq is nil when only operators were given;
// the value stored under OpIn is a []any.
type Expr struct {
	Eq  any
	Ops map[Operator]any
}

type Filter map[string]Expr

// Set replaces every condition on field with equality.
func (f Filter) Set(field string, value any) {
	f[field] = Expr{Eq: value}
}

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Translate builds a filter from raw query parameters. Keys are either "field" or
// "field[op]"; anything outside the schema is rejected.
func Translate(values map[string][]string, schema *Schema) (Filter, error) {
	filter := Filter{}
	for key, raws := range values {
		if reserved[key] || len(raws) == 0 {
			continue
		}
		name, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		field, ok := schema.field(name)
		if !ok {
			return nil, apperr.Validationf("Cannot filter by unknown field '%s'", name)
		}

		expr := filter[name]
		switch {
		case op == "" && len(raws) == 1:
			v, err := parseValue(key, field, raws[0])
			if err != nil {
				return nil, err
			}
			expr.Eq = v
		case op == "" || op == OpIn:
			// repeated plain keys behave like field[in]
			list, err := parseList(key, field, raws)
			if err != nil {
				return nil, err
			}
			expr = withOp(expr, OpIn, list)
		default:
			if len(raws) > 1 {
				return nil, apperr.Validationf("Parameter '%s' was given more than once", key)
			}
			v, err := parseValue(key, field, raws[0])
			if err != nil {
				return nil, err
			}
			expr = withOp(expr, op, v)
		}
		filter[name] = expr
	}
	return filter, nil
}

func withOp(e Expr, op Operator, v any) Expr {
	if e.Ops == nil {
		e.Ops = map[Operator]any{}
	}
	e.Ops[op] = v
	return e
}

func splitKey(key string) (string, Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.ContainsRune(key, ']') {
			return "", "", apperr.Validationf("Malformed parameter '%s'", key)
		}
		return key, "", nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") || strings.Count(key, "[") != 1 || strings.Count(key, "]") != 1 {
		return "", "", apperr.Validationf("Malformed parameter '%s'", key)
	}
	op := Operator(key[open+1 : len(key)-1])
	if !op.valid() {
		return "", "", apperr.Validationf("Unknown operator '%s' in '%s'", op, key)
	}
	return key[:open], op, nil
}

func parseList(key string, field Field, raws []string) ([]any, error) {
	var out []any
	for _, raw := range raws {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := parseValue(key, field, part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, apperr.Validationf("Parameter '%s' needs at least one value", key)
	}
	return out, nil
}

func parseValue(key string, field Field, raw string) (any, error) {
	switch field.Type {
	case Int:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, apperr.Validationf("Parameter '%s' must be a number", key)
		}
		return n, nil
	case Time:
		t, ok := ParseTime(raw)
		if !ok {
			return nil, apperr.Validationf("Parameter '%s' must be a date", key)
		}
		return t, nil
	default:
		return raw, nil
	}
}

// ParseTime trims s and accepts RFC3339 or a date with optional time; values without a
// zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
