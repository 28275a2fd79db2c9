package clause

import (
	"strings"
)

const (
	AndWithSpace = " AND "
	OrWithSpace  = " OR "
)

// Where a list of conditions joined with AND, a single element OrConditions
// is joined with OR instead
type Where struct {
	Exprs []Expression
}

func (where Where) Build(builder Builder) {
	exprs := where.Exprs
	if len(exprs) == 1 {
		if and, ok := exprs[0].(AndConditions); ok {
			exprs = and.Exprs
		}
	}

	// a leading `OR x` has nothing to attach to, start from the first plain condition
	for idx, expr := range exprs {
		if or, ok := expr.(OrConditions); ok && len(or.Exprs) == 1 {
			continue
		}
		if idx > 0 {
			swapped := make([]Expression, len(exprs))
			copy(swapped, exprs)
			swapped[0], swapped[idx] = swapped[idx], swapped[0]
			exprs = swapped
		}
		break
	}

	buildExprs(exprs, builder, AndWithSpace)
}

func buildExprs(exprs []Expression, builder Builder, joinCond string) {
	for idx, expr := range exprs {
		if idx > 0 {
			if or, ok := expr.(OrConditions); ok && len(or.Exprs) == 1 {
				builder.WriteString(OrWithSpace)
			} else {
				builder.WriteString(joinCond)
			}
		}

		if len(exprs) > 1 && needsParentheses(expr) {
			builder.WriteByte('(')
			expr.Build(builder)
			builder.WriteByte(')')
			continue
		}
		expr.Build(builder)
	}
}

// needsParentheses reports whether a raw expression among siblings could
// change meaning through operator precedence
func needsParentheses(expr Expression) bool {
	switch v := expr.(type) {
	case Expr:
		return rawContains(v, AndWithSpace, OrWithSpace)
	case OrConditions:
		if e, ok := singleExpr(v.Exprs); ok {
			return rawContains(e, AndWithSpace, OrWithSpace)
		}
	case AndConditions:
		if e, ok := singleExpr(v.Exprs); ok {
			return rawContains(e, OrWithSpace)
		}
	}
	return false
}

func singleExpr(exprs []Expression) (Expr, bool) {
	if len(exprs) != 1 {
		return Expr{}, false
	}
	e, ok := exprs[0].(Expr)
	return e, ok
}

func rawContains(expr Expr, keywords ...string) bool {
	sql := strings.ToUpper(expr.SQL)
	for _, keyword := range keywords {
		if strings.Contains(sql, keyword) {
			return true
		}
	}
	return false
}

func buildGroup(exprs []Expression, builder Builder, joinCond string) {
	if len(exprs) > 1 {
		builder.WriteByte('(')
		defer builder.WriteByte(')')
	}
	buildExprs(exprs, builder, joinCond)
}

func And(exprs ...Expression) Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		if _, ok := exprs[0].(OrConditions); !ok {
			return exprs[0]
		}
	}
	return AndConditions{Exprs: exprs}
}

type AndConditions struct {
	Exprs []Expression
}

func (and AndConditions) Build(builder Builder) {
	buildGroup(and.Exprs, builder, AndWithSpace)
}

func Or(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return OrConditions{Exprs: exprs}
}

type OrConditions struct {
	Exprs []Expression
}

func (or OrConditions) Build(builder Builder) {
	buildGroup(or.Exprs, builder, OrWithSpace)
}

func Not(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return NotConditions{Exprs: exprs}
}

// NotConditions negates each expression, using its NegationBuild when it has one
type NotConditions struct {
	Exprs []Expression
}

func (not NotConditions) Build(builder Builder) {
	if len(not.Exprs) > 1 {
		builder.WriteByte('(')
		defer builder.WriteByte(')')
	}

	for idx, expr := range not.Exprs {
		if idx > 0 {
			builder.WriteString(AndWithSpace)
		}

		if negation, ok := expr.(NegationExpressionBuilder); ok {
			negation.NegationBuild(builder)
			continue
		}

		builder.WriteString("NOT ")
		if e, ok := expr.(Expr); ok && rawContains(e, AndWithSpace, OrWithSpace) {
			builder.WriteByte('(')
			expr.Build(builder)
			builder.WriteByte(')')
			continue
		}
		expr.Build(builder)
	}
}
