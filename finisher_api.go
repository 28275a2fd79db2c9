package powerjoins

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/logger"
)

// ToSQL renders the query, vars use the dialect's placeholders
func (db *DB) ToSQL() (sql string, vars []interface{}, err error) {
	tx := db.getInstance()
	stmt := tx.Statement.clone()
	begin := time.Now()

	defer func() {
		tx.Logger.Trace(stmt.Context, begin, func() (string, []string) {
			joins := make([]string, 0, len(stmt.Joins))
			for _, join := range stmt.Joins {
				joins = append(joins, join.Name())
			}
			if filter, ok := tx.Logger.(logger.ParamsFilter); ok {
				sql, vars := filter.ParamsFilter(stmt.Context, sql, vars...)
				return tx.Dialector.Explain(sql, vars...), joins
			}
			return tx.Dialector.Explain(sql, vars...), joins
		}, err)
	}()

	if tx.Error != nil {
		return "", nil, tx.Error
	}

	if stmt.Schema == nil {
		return "", nil, fmt.Errorf("%w: call Model before ToSQL", ErrModelValueRequired)
	}

	return stmt.selectBuilder().ToSql()
}

// Explain renders the query with its vars inlined, for logs and debugging
func (db *DB) Explain() (string, error) {
	sql, vars, err := db.ToSQL()
	if err != nil {
		return "", err
	}
	return db.Dialector.Explain(sql, vars...), nil
}

// selectBuilder assembles the statement into a squirrel select. Every part
// is rendered with `?` placeholders, squirrel converts them.
func (stmt *Statement) selectBuilder() sq.SelectBuilder {
	builder := sq.StatementBuilder.PlaceholderFormat(stmt.DB.Dialector.PlaceholderFormat()).Select()

	if stmt.Distinct {
		builder = builder.Distinct()
	}

	if len(stmt.Selects) == 0 {
		builder = builder.Columns("*")
	}
	for _, expr := range stmt.Selects {
		if column, ok := expr.(clause.Column); ok {
			builder = builder.Columns(stmt.Quote(column))
			continue
		}
		sql, vars := stmt.render(expr)
		builder = builder.Column(sq.Expr(sql, vars...))
	}

	builder = builder.From(stmt.Quote(clause.Table{Name: stmt.Table}))

	for _, join := range stmt.Joins {
		sql, vars := stmt.render(join)
		builder = builder.JoinClause(sql, vars...)
	}

	if wheres := append(append([]clause.Expression{}, stmt.Wheres...), stmt.softDeleteQueryClause()...); len(wheres) > 0 {
		sql, vars := stmt.render(clause.Where{Exprs: wheres})
		builder = builder.Where(sql, vars...)
	}

	if len(stmt.GroupBy.Columns) > 0 {
		groups := make([]string, 0, len(stmt.GroupBy.Columns))
		for _, column := range stmt.GroupBy.Columns {
			groups = append(groups, stmt.Quote(column))
		}
		builder = builder.GroupBy(groups...)
	}

	if len(stmt.GroupBy.Having) > 0 {
		sql, vars := stmt.render(clause.Where{Exprs: stmt.GroupBy.Having})
		builder = builder.Having(sql, vars...)
	}

	if len(stmt.OrderBy.Columns) > 0 || stmt.OrderBy.Expression != nil {
		sql, vars := stmt.render(stmt.OrderBy)
		builder = builder.OrderByClause(sql, vars...)
	}

	if stmt.Limit != nil && *stmt.Limit >= 0 {
		builder = builder.Limit(uint64(*stmt.Limit))
	}

	if stmt.Offset != nil && *stmt.Offset > 0 {
		builder = builder.Offset(uint64(*stmt.Offset))
	}

	return builder
}
