package clause

// RewriteColumns returns a copy of expr with every column reference passed
// through fn. Only expression types of this package are walked; anything else
// is returned unchanged.
func RewriteColumns(expr Expression, fn func(Column) Column) Expression {
	rewrite := func(v interface{}) interface{} {
		switch c := v.(type) {
		case Column:
			return fn(c)
		case Expression:
			return RewriteColumns(c, fn)
		}
		return v
	}

	switch v := expr.(type) {
	case Column:
		return fn(v)
	case Eq:
		return Eq{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Neq:
		return Neq{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Gt:
		return Gt{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Gte:
		return Gte{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Lt:
		return Lt{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Lte:
		return Lte{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Like:
		return Like{Column: rewrite(v.Column), Value: rewrite(v.Value)}
	case Compare:
		return Compare{Column: rewrite(v.Column), Operator: v.Operator, Value: rewrite(v.Value)}
	case IN:
		return IN{Column: rewrite(v.Column), Values: v.Values}
	case Expr:
		vars := make([]interface{}, len(v.Vars))
		for idx, value := range v.Vars {
			vars[idx] = rewrite(value)
		}
		return Expr{SQL: v.SQL, Vars: vars, WithoutParentheses: v.WithoutParentheses}
	case AndConditions:
		return AndConditions{Exprs: rewriteExprs(v.Exprs, fn)}
	case OrConditions:
		return OrConditions{Exprs: rewriteExprs(v.Exprs, fn)}
	case NotConditions:
		return NotConditions{Exprs: rewriteExprs(v.Exprs, fn)}
	case Where:
		return Where{Exprs: rewriteExprs(v.Exprs, fn)}
	}
	return expr
}

func rewriteExprs(exprs []Expression, fn func(Column) Column) []Expression {
	results := make([]Expression, len(exprs))
	for idx, expr := range exprs {
		results[idx] = RewriteColumns(expr, fn)
	}
	return results
}

// RewriteTable points every column qualified with table `from` at table `to`.
// Columns are matched on their parsed table part, never by substring.
func RewriteTable(expr Expression, from, to string) Expression {
	if from == to {
		return expr
	}

	return RewriteColumns(expr, func(column Column) Column {
		if !column.Raw && column.Table == from {
			column.Table = to
		}
		return column
	})
}
