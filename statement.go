package powerjoins

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// Statement the query under construction
type Statement struct {
	DB       *DB
	Context  context.Context
	Model    string
	Schema   *schema.Schema
	Table    string
	Unscoped bool
	Distinct bool
	Selects  []clause.Expression
	Wheres   []clause.Expression
	Joins    []*JoinClause
	GroupBy  clause.GroupBy
	OrderBy  clause.OrderBy
	Limit    *int
	Offset   *int

	// joined memoizes applied relationship joins, keyed by
	// `alias-or-table|path`, so a path is never joined twice
	joined map[string]Aliases

	// SQL Builder
	SQL  strings.Builder
	Vars []interface{}
}

func newStatement(db *DB) *Statement {
	return &Statement{
		DB:      db,
		Context: context.Background(),
		joined:  map[string]Aliases{},
	}
}

// WriteString write string
func (stmt *Statement) WriteString(str string) (int, error) {
	return stmt.SQL.WriteString(str)
}

// WriteByte write byte
func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

// WriteQuoted write quoted value
func (stmt *Statement) WriteQuoted(value interface{}) {
	stmt.QuoteTo(&stmt.SQL, value)
}

// QuoteTo write quoted value to writer
func (stmt *Statement) QuoteTo(writer clause.Writer, field interface{}) {
	write := func(raw bool, str string) {
		if raw {
			writer.WriteString(str)
		} else {
			stmt.DB.Dialector.QuoteTo(writer, str)
		}
	}

	switch v := field.(type) {
	case clause.Table:
		if v.Name == clause.CurrentTable {
			write(v.Raw, stmt.Table)
		} else {
			write(v.Raw, v.Name)
		}

		if v.Alias != "" {
			writer.WriteString(" AS ")
			write(v.Raw, v.Alias)
		}
	case clause.Column:
		if v.Table != "" {
			if v.Table == clause.CurrentTable {
				write(v.Raw, stmt.Table)
			} else {
				write(v.Raw, v.Table)
			}
			writer.WriteByte('.')
		}

		switch {
		case v.Name == clause.PrimaryKey:
			if stmt.Schema != nil {
				write(v.Raw, stmt.Schema.PrimaryKey)
			}
		case v.Name == "*":
			writer.WriteByte('*')
		default:
			write(v.Raw, v.Name)
		}

		if v.Alias != "" {
			writer.WriteString(" AS ")
			write(v.Raw, v.Alias)
		}
	case clause.Expression:
		v.Build(stmt)
	case string:
		stmt.DB.Dialector.QuoteTo(writer, v)
	default:
		write(false, fmt.Sprint(field))
	}
}

// Quote returns quoted value
func (stmt *Statement) Quote(field interface{}) string {
	var builder strings.Builder
	stmt.QuoteTo(&builder, field)
	return builder.String()
}

// AddVar add var. Values become `?` placeholders, converted to the dialect's
// placeholder format when the query is assembled.
func (stmt *Statement) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}

		switch v := v.(type) {
		case clause.Column, clause.Table:
			stmt.QuoteTo(writer, v)
		case clause.Expression:
			v.Build(stmt)
		case []interface{}:
			if len(v) > 0 {
				writer.WriteByte('(')
				stmt.AddVar(writer, v...)
				writer.WriteByte(')')
			} else {
				writer.WriteString("(NULL)")
			}
		default:
			stmt.Vars = append(stmt.Vars, v)
			writer.WriteByte('?')
		}
	}
}

// render builds expr on its own and returns the SQL and vars it produced
func (stmt *Statement) render(expr clause.Expression) (string, []interface{}) {
	stmt.SQL.Reset()
	stmt.Vars = nil
	expr.Build(stmt)
	return stmt.SQL.String(), stmt.Vars
}

// alreadyJoined returns the names a memoized join was applied with
func (stmt *Statement) alreadyJoined(key string) (Aliases, bool) {
	names, ok := stmt.joined[key]
	return names, ok
}

func (stmt *Statement) markJoined(key string, names Aliases) {
	if stmt.joined == nil {
		stmt.joined = map[string]Aliases{}
	}
	stmt.joined[key] = names
}

// ensureRootSelect selects the root table's columns unless a select exists
func (stmt *Statement) ensureRootSelect() {
	if len(stmt.Selects) == 0 {
		stmt.Selects = append(stmt.Selects, clause.Column{Table: stmt.Table, Name: "*"})
	}
}

func (stmt *Statement) groupByPrimaryKey() {
	column := clause.Column{Table: stmt.Table, Name: stmt.Schema.PrimaryKey}
	if !stmt.GroupBy.HasColumn(column) {
		stmt.GroupBy.Columns = append(stmt.GroupBy.Columns, column)
	}
}

func (stmt *Statement) clone() *Statement {
	newStmt := &Statement{
		DB:       stmt.DB,
		Context:  stmt.Context,
		Model:    stmt.Model,
		Schema:   stmt.Schema,
		Table:    stmt.Table,
		Unscoped: stmt.Unscoped,
		Distinct: stmt.Distinct,
		Limit:    stmt.Limit,
		Offset:   stmt.Offset,
		OrderBy:  clause.OrderBy{Expression: stmt.OrderBy.Expression},
		joined:   make(map[string]Aliases, len(stmt.joined)),
	}

	if len(stmt.Selects) > 0 {
		newStmt.Selects = make([]clause.Expression, len(stmt.Selects))
		copy(newStmt.Selects, stmt.Selects)
	}

	if len(stmt.Wheres) > 0 {
		newStmt.Wheres = make([]clause.Expression, len(stmt.Wheres))
		copy(newStmt.Wheres, stmt.Wheres)
	}

	if len(stmt.Joins) > 0 {
		newStmt.Joins = make([]*JoinClause, len(stmt.Joins))
		for idx, join := range stmt.Joins {
			newStmt.Joins[idx] = join.clone(newStmt)
		}
	}

	if len(stmt.GroupBy.Columns) > 0 {
		newStmt.GroupBy.Columns = make([]clause.Column, len(stmt.GroupBy.Columns))
		copy(newStmt.GroupBy.Columns, stmt.GroupBy.Columns)
	}

	if len(stmt.GroupBy.Having) > 0 {
		newStmt.GroupBy.Having = make([]clause.Expression, len(stmt.GroupBy.Having))
		copy(newStmt.GroupBy.Having, stmt.GroupBy.Having)
	}

	if len(stmt.OrderBy.Columns) > 0 {
		newStmt.OrderBy.Columns = make([]clause.OrderByColumn, len(stmt.OrderBy.Columns))
		copy(newStmt.OrderBy.Columns, stmt.OrderBy.Columns)
	}

	for key, names := range stmt.joined {
		newStmt.joined[key] = names
	}

	return newStmt
}
