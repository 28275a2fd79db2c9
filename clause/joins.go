package clause

type JoinType string

const (
	CrossJoin JoinType = "CROSS"
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
)

// Join clause for from. Columns in ON that use CurrentTable resolve to the
// joined table, or to its alias when one is set.
type Join struct {
	Type     JoinType
	Table    Table
	Subquery Expression
	ON       Where
	Using    []string
}

// Name returns the name the joined table is referenced by
func (join Join) Name() string {
	if join.Table.Alias != "" {
		return join.Table.Alias
	}
	return join.Table.Name
}

func (join Join) Build(builder Builder) {
	if join.Type != "" {
		builder.WriteString(string(join.Type))
		builder.WriteByte(' ')
	}

	builder.WriteString("JOIN ")
	if join.Subquery != nil {
		builder.WriteByte('(')
		join.Subquery.Build(builder)
		builder.WriteString(") AS ")
		builder.WriteQuoted(Table{Name: join.Name()})
	} else {
		builder.WriteQuoted(join.Table)
	}

	if len(join.ON.Exprs) > 0 {
		name := join.Name()
		exprs := make([]Expression, len(join.ON.Exprs))
		for idx, expr := range join.ON.Exprs {
			exprs[idx] = RewriteTable(expr, CurrentTable, name)
		}

		builder.WriteString(" ON ")
		Where{Exprs: exprs}.Build(builder)
	} else if len(join.Using) > 0 {
		builder.WriteString(" USING (")
		for idx, c := range join.Using {
			if idx > 0 {
				builder.WriteByte(',')
			}
			builder.WriteQuoted(c)
		}
		builder.WriteByte(')')
	}
}
