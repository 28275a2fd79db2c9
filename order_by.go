package powerjoins

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// OrderOptions options of OrderByPowerJoinsWith
type OrderOptions struct {
	// Direction ASC unless set
	Direction string
	// Aggregation one of COUNT, SUM, AVG, MIN, MAX
	Aggregation string
	JoinType    clause.JoinType
	// Aliases joins the relationship or table named by the key under the alias
	Aliases map[string]string
}

// OrderByPowerJoins orders by a column of a related model, `posts.title`
// or schema.SortPair{Path: "posts", Column: "title"}
func (db *DB) OrderByPowerJoins(sort interface{}, direction ...string) *DB {
	return db.OrderByPowerJoinsWith(sort, OrderOptions{Direction: firstOr(direction, "ASC")})
}

func (db *DB) OrderByLeftPowerJoins(sort interface{}, direction ...string) *DB {
	return db.OrderByPowerJoinsWith(sort, OrderOptions{Direction: firstOr(direction, "ASC"), JoinType: clause.LeftJoin})
}

func (db *DB) OrderByPowerJoinsCount(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "COUNT", clause.InnerJoin, direction)
}

func (db *DB) OrderByPowerJoinsSum(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "SUM", clause.InnerJoin, direction)
}

func (db *DB) OrderByPowerJoinsAvg(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "AVG", clause.InnerJoin, direction)
}

func (db *DB) OrderByPowerJoinsMin(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "MIN", clause.InnerJoin, direction)
}

func (db *DB) OrderByPowerJoinsMax(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "MAX", clause.InnerJoin, direction)
}

func (db *DB) OrderByLeftPowerJoinsCount(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "COUNT", clause.LeftJoin, direction)
}

func (db *DB) OrderByLeftPowerJoinsSum(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "SUM", clause.LeftJoin, direction)
}

func (db *DB) OrderByLeftPowerJoinsAvg(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "AVG", clause.LeftJoin, direction)
}

func (db *DB) OrderByLeftPowerJoinsMin(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "MIN", clause.LeftJoin, direction)
}

func (db *DB) OrderByLeftPowerJoinsMax(sort interface{}, direction ...string) *DB {
	return db.orderByAggregate(sort, "MAX", clause.LeftJoin, direction)
}

func (db *DB) orderByAggregate(sort interface{}, aggregation string, joinType clause.JoinType, direction []string) *DB {
	return db.OrderByPowerJoinsWith(sort, OrderOptions{
		Direction:   firstOr(direction, "ASC"),
		Aggregation: aggregation,
		JoinType:    joinType,
	})
}

// OrderByPowerJoinsWith joins the relationships of sort and orders by its
// column. With an aggregation the root rows are grouped by primary key and
// ordered by the aggregate, selected as `<path>_<column>_<aggregation>`.
func (db *DB) OrderByPowerJoinsWith(sort interface{}, opts OrderOptions) (tx *DB) {
	tx = db.getInstance()

	path, column, err := parseSort(sort)
	_, span := tracer.Start(tx.Statement.Context, "powerjoins.OrderByPowerJoins", trace.WithAttributes(
		attribute.String("powerjoins.model", tx.Statement.Model),
		attribute.String("powerjoins.path", path),
		attribute.String("powerjoins.aggregation", opts.Aggregation),
	))
	defer span.End()

	if err == nil {
		err = tx.Statement.orderByPowerJoins(path, column, opts)
	}

	if err != nil {
		tx.Observer.ScopeError("OrderByPowerJoins")
		traceError(span, err)
		tx.AddError(err)
	}
	return tx
}

func (stmt *Statement) orderByPowerJoins(path, column string, opts OrderOptions) error {
	direction := strings.ToUpper(strings.TrimSpace(orDefault(opts.Direction, "ASC")))
	if direction != "ASC" && direction != "DESC" {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, opts.Direction)
	}

	aggregation := strings.ToUpper(strings.TrimSpace(opts.Aggregation))
	switch aggregation {
	case "", "COUNT", "SUM", "AVG", "MIN", "MAX":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAggregation, opts.Aggregation)
	}

	if stmt.Schema == nil {
		return fmt.Errorf("%w: call Model before ordering by %s", ErrModelValueRequired, path)
	}

	target := clause.Column{Table: stmt.Table, Name: column}
	if path != "" {
		callbacks := make(map[string]func(*JoinClause), len(opts.Aliases))
		for name, alias := range opts.Aliases {
			alias := alias
			callbacks[name] = func(join *JoinClause) { join.As(alias) }
		}

		_, names, err := stmt.joinRelationship(path, JoinOptions{Type: opts.JoinType, Callbacks: callbacks})
		if err != nil {
			return err
		}
		target.Table = names.Far
	}

	if aggregation == "" {
		stmt.OrderBy = stmt.OrderBy.Merge(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: target, Desc: direction == "DESC"}},
		})
		return nil
	}

	alias := strings.ReplaceAll(path, ".", "_") + "_" + column + "_" + strings.ToLower(aggregation)
	if path == "" {
		alias = column + "_" + strings.ToLower(aggregation)
	}

	stmt.ensureRootSelect()
	stmt.Selects = append(stmt.Selects, clause.Expr{
		SQL:  aggregation + "(?) AS ?",
		Vars: []interface{}{target, clause.Column{Name: alias}},
	})
	stmt.groupByPrimaryKey()
	stmt.OrderBy = stmt.OrderBy.Merge(clause.OrderBy{
		Columns: []clause.OrderByColumn{{Column: clause.Column{Name: alias}, Desc: direction == "DESC"}},
	})
	return nil
}

// parseSort splits `posts.comments.votes` into the relationship path and column
func parseSort(sort interface{}) (path, column string, err error) {
	switch v := sort.(type) {
	case string:
		if idx := strings.LastIndexByte(v, '.'); idx >= 0 {
			path, column = v[:idx], v[idx+1:]
		} else {
			column = v
		}
	case schema.SortPair:
		path, column = v.Path, v.Column
	case *schema.SortPair:
		path, column = v.Path, v.Column
	default:
		return "", "", fmt.Errorf("unsupported sort %T", sort)
	}

	if column == "" {
		return path, column, fmt.Errorf("sort %v has no column", sort)
	}
	return path, column, nil
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
