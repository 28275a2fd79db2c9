package clause

// GroupBy group by clause
type GroupBy struct {
	Columns []Column
	Having  []Expression
}

// Build build group by clause
func (groupBy GroupBy) Build(builder Builder) {
	for idx, column := range groupBy.Columns {
		if idx > 0 {
			builder.WriteByte(',')
		}

		builder.WriteQuoted(column)
	}

	if len(groupBy.Having) > 0 {
		builder.WriteString(" HAVING ")
		Where{Exprs: groupBy.Having}.Build(builder)
	}
}

// HasColumn reports whether column is already grouped
func (groupBy GroupBy) HasColumn(column Column) bool {
	for _, c := range groupBy.Columns {
		if c.Table == column.Table && c.Name == column.Name && c.Raw == column.Raw {
			return true
		}
	}
	return false
}
