package clause

type OrderByColumn struct {
	Column  Column
	Desc    bool
	Reorder bool
}

type OrderBy struct {
	Columns    []OrderByColumn
	Expression Expression
}

// Build build where clause
func (orderBy OrderBy) Build(builder Builder) {
	if orderBy.Expression != nil {
		orderBy.Expression.Build(builder)
	} else {
		for idx, column := range orderBy.Columns {
			if idx > 0 {
				builder.WriteByte(',')
			}

			builder.WriteQuoted(column.Column)
			if column.Desc {
				builder.WriteString(" DESC")
			}
		}
	}
}

// Merge appends the columns of other; a Reorder column drops everything
// before it
func (orderBy OrderBy) Merge(other OrderBy) OrderBy {
	for i := len(other.Columns) - 1; i >= 0; i-- {
		if other.Columns[i].Reorder {
			other.Columns = other.Columns[i:]
			return other
		}
	}

	copiedColumns := make([]OrderByColumn, len(orderBy.Columns), len(orderBy.Columns)+len(other.Columns))
	copy(copiedColumns, orderBy.Columns)
	orderBy.Columns = append(copiedColumns, other.Columns...)
	return orderBy
}
