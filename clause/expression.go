package clause

import (
	"strings"
)

// Expression expression interface
type Expression interface {
	Build(builder Builder)
}

// NegationExpressionBuilder negation expression builder
type NegationExpressionBuilder interface {
	NegationBuild(builder Builder)
}

// Column quote with name
type Column struct {
	Table string
	Name  string
	Alias string
	Raw   bool
}

// ParseColumn splits a `table.column` reference into its parts. Anything that
// looks like an SQL expression rather than an identifier is kept raw.
func ParseColumn(name string) Column {
	if strings.ContainsAny(name, " ()*") {
		return Column{Name: name, Raw: true}
	}

	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return Column{Table: name[:idx], Name: name[idx+1:]}
	}
	return Column{Name: name}
}

// String returns the unquoted `table.column` form
func (column Column) String() string {
	if column.Table == "" {
		return column.Name
	}
	return column.Table + "." + column.Name
}

// Build writes the quoted column, so a column can stand in a select list
// or a condition
func (column Column) Build(builder Builder) {
	builder.WriteQuoted(column)
}

// Table quote with name
type Table struct {
	Name  string
	Alias string
	Raw   bool
}

// Expr raw expression
type Expr struct {
	SQL                string
	Vars               []interface{}
	WithoutParentheses bool
}

// Build build raw expression
func (expr Expr) Build(builder Builder) {
	var idx int

	for _, v := range []byte(expr.SQL) {
		if v == '?' && len(expr.Vars) > idx {
			if expr.WithoutParentheses {
				if values, ok := expr.Vars[idx].([]interface{}); ok {
					for i, value := range values {
						if i > 0 {
							builder.WriteByte(',')
						}
						builder.AddVar(builder, value)
					}
					idx++
					continue
				}
			}

			builder.AddVar(builder, expr.Vars[idx])
			idx++
		} else {
			builder.WriteByte(v)
		}
	}

	if idx < len(expr.Vars) {
		for _, v := range expr.Vars[idx:] {
			builder.AddVar(builder, v)
		}
	}
}

// IN Whether a value is within a set of values
type IN struct {
	Column interface{}
	Values []interface{}
}

func (in IN) Build(builder Builder) {
	builder.WriteQuoted(in.Column)

	switch len(in.Values) {
	case 0:
		builder.WriteString(" IN (NULL)")
	case 1:
		if _, ok := in.Values[0].([]interface{}); !ok {
			builder.WriteString(" = ")
			builder.AddVar(builder, in.Values[0])
			break
		}

		fallthrough
	default:
		builder.WriteString(" IN ")
		builder.AddVar(builder, in.Values)
	}
}

func (in IN) NegationBuild(builder Builder) {
	builder.WriteQuoted(in.Column)
	switch len(in.Values) {
	case 0:
		builder.WriteString(" IS NOT NULL")
	case 1:
		if _, ok := in.Values[0].([]interface{}); !ok {
			builder.WriteString(" <> ")
			builder.AddVar(builder, in.Values[0])
			break
		}

		fallthrough
	default:
		builder.WriteString(" NOT IN ")
		builder.AddVar(builder, in.Values)
	}
}

// Eq equal to for where
type Eq struct {
	Column interface{}
	Value  interface{}
}

func (eq Eq) Build(builder Builder) {
	builder.WriteQuoted(eq.Column)

	if eq.Value == nil {
		builder.WriteString(" IS NULL")
	} else {
		builder.WriteString(" = ")
		builder.AddVar(builder, eq.Value)
	}
}

func (eq Eq) NegationBuild(builder Builder) {
	Neq(eq).Build(builder)
}

// Neq not equal to for where
type Neq Eq

func (neq Neq) Build(builder Builder) {
	builder.WriteQuoted(neq.Column)

	if neq.Value == nil {
		builder.WriteString(" IS NOT NULL")
	} else {
		builder.WriteString(" <> ")
		builder.AddVar(builder, neq.Value)
	}
}

func (neq Neq) NegationBuild(builder Builder) {
	Eq(neq).Build(builder)
}

// Gt greater than for where
type Gt Eq

func (gt Gt) Build(builder Builder) {
	builder.WriteQuoted(gt.Column)
	builder.WriteString(" > ")
	builder.AddVar(builder, gt.Value)
}

func (gt Gt) NegationBuild(builder Builder) {
	Lte(gt).Build(builder)
}

// Gte greater than or equal to for where
type Gte Eq

func (gte Gte) Build(builder Builder) {
	builder.WriteQuoted(gte.Column)
	builder.WriteString(" >= ")
	builder.AddVar(builder, gte.Value)
}

func (gte Gte) NegationBuild(builder Builder) {
	Lt(gte).Build(builder)
}

// Lt less than for where
type Lt Eq

func (lt Lt) Build(builder Builder) {
	builder.WriteQuoted(lt.Column)
	builder.WriteString(" < ")
	builder.AddVar(builder, lt.Value)
}

func (lt Lt) NegationBuild(builder Builder) {
	Gte(lt).Build(builder)
}

// Lte less than or equal to for where
type Lte Eq

func (lte Lte) Build(builder Builder) {
	builder.WriteQuoted(lte.Column)
	builder.WriteString(" <= ")
	builder.AddVar(builder, lte.Value)
}

func (lte Lte) NegationBuild(builder Builder) {
	Gt(lte).Build(builder)
}

// Like whether string matches regular expression
type Like Eq

func (like Like) Build(builder Builder) {
	builder.WriteQuoted(like.Column)
	builder.WriteString(" LIKE ")
	builder.AddVar(builder, like.Value)
}

func (like Like) NegationBuild(builder Builder) {
	builder.WriteQuoted(like.Column)
	builder.WriteString(" NOT LIKE ")
	builder.AddVar(builder, like.Value)
}

// Compare compares a column using an operator that has no dedicated
// expression, e.g. `ILIKE` or `<=>`
type Compare struct {
	Column   interface{}
	Operator string
	Value    interface{}
}

func (cmp Compare) Build(builder Builder) {
	builder.WriteQuoted(cmp.Column)
	builder.WriteByte(' ')
	builder.WriteString(cmp.Operator)
	builder.WriteByte(' ')
	builder.AddVar(builder, cmp.Value)
}

// Comparison returns the expression for `column <operator> value`. Both
// nil-aware equality operators map to IS NULL / IS NOT NULL.
func Comparison(column interface{}, operator string, value interface{}) Expression {
	switch strings.ToUpper(strings.TrimSpace(operator)) {
	case "=", "==":
		return Eq{Column: column, Value: value}
	case "<>", "!=":
		return Neq{Column: column, Value: value}
	case ">":
		return Gt{Column: column, Value: value}
	case ">=":
		return Gte{Column: column, Value: value}
	case "<":
		return Lt{Column: column, Value: value}
	case "<=":
		return Lte{Column: column, Value: value}
	case "LIKE":
		return Like{Column: column, Value: value}
	default:
		return Compare{Column: column, Operator: operator, Value: value}
	}
}
