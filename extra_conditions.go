package powerjoins

import (
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// applyExtraConditions replays the relationship's default conditions on
// join. Only comparisons, NULL checks and groups of them are replayed,
// conditions on the relationship's own join keys are skipped. Columns of
// the related table are resolved to the join's alias.
func applyExtraConditions(join *JoinClause, conditions []clause.Expression, keys []clause.Column, table string) {
	for _, cond := range conditions {
		if expr, ok := replayCondition(cond, keys, table); ok {
			join.Conditions = append(join.Conditions, expr)
		}
	}
}

func replayCondition(expr clause.Expression, keys []clause.Column, table string) (clause.Expression, bool) {
	column := func(v interface{}) (interface{}, bool) {
		return replayColumn(v, keys, table)
	}

	switch v := expr.(type) {
	case clause.Eq:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Neq:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Gt:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Gte:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Lt:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Lte:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Like:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.Compare:
		if c, ok := column(v.Column); ok {
			v.Column = c
			return v, true
		}
	case clause.AndConditions:
		if exprs := replayConditions(v.Exprs, keys, table); len(exprs) > 0 {
			return clause.AndConditions{Exprs: exprs}, true
		}
	case clause.OrConditions:
		if exprs := replayConditions(v.Exprs, keys, table); len(exprs) > 0 {
			return clause.OrConditions{Exprs: exprs}, true
		}
	}
	return nil, false
}

func replayConditions(exprs []clause.Expression, keys []clause.Column, table string) []clause.Expression {
	var results []clause.Expression
	for _, expr := range exprs {
		if replayed, ok := replayCondition(expr, keys, table); ok {
			results = append(results, replayed)
		}
	}
	return results
}

func replayColumn(v interface{}, keys []clause.Column, table string) (interface{}, bool) {
	column, ok := v.(clause.Column)
	if !ok || column.Raw || column.Name == "" || strings.HasSuffix(column.Name, ".") {
		return v, false
	}

	qualified := column
	if qualified.Table == "" {
		qualified.Table = table
	}

	for _, key := range keys {
		if key.Table == qualified.Table && key.Name == qualified.Name {
			return v, false
		}
	}

	if column.Table == "" || column.Table == table {
		column.Table = clause.CurrentTable
	}
	return column, true
}
