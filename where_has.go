package powerjoins

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// HasOptions options of PowerJoinHasWith
type HasOptions struct {
	// Operator >= unless set
	Operator string
	Count    int
	// Boolean `and` or `or`, how the count check combines with earlier ones
	Boolean  string
	Callback func(*JoinClause)
}

// PowerJoinHas keeps root rows with at least count related rows, `<`, `=`
// and the other comparison operators are allowed too. The relationship is
// left joined and counted in HAVING.
func (db *DB) PowerJoinHas(relation, operator string, count int, callbacks ...func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinHas", relation, HasOptions{Operator: operator, Count: count, Callback: chainCallbacks(callbacks)})
}

// PowerJoinOrHas like PowerJoinHas, combined with OR
func (db *DB) PowerJoinOrHas(relation, operator string, count int, callbacks ...func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinOrHas", relation, HasOptions{Operator: operator, Count: count, Boolean: "or", Callback: chainCallbacks(callbacks)})
}

// PowerJoinWhereHas keeps root rows with a related row matching callback
func (db *DB) PowerJoinWhereHas(relation string, callback func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinWhereHas", relation, HasOptions{Operator: ">=", Count: 1, Callback: callback})
}

func (db *DB) PowerJoinOrWhereHas(relation string, callback func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinOrWhereHas", relation, HasOptions{Operator: ">=", Count: 1, Boolean: "or", Callback: callback})
}

// PowerJoinDoesntHave keeps root rows without related rows
func (db *DB) PowerJoinDoesntHave(relation string, callbacks ...func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinDoesntHave", relation, HasOptions{Operator: "<", Count: 1, Callback: chainCallbacks(callbacks)})
}

func (db *DB) PowerJoinOrDoesntHave(relation string, callbacks ...func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinOrDoesntHave", relation, HasOptions{Operator: "<", Count: 1, Boolean: "or", Callback: chainCallbacks(callbacks)})
}

// PowerJoinWhereDoesntHave keeps root rows without a related row matching callback
func (db *DB) PowerJoinWhereDoesntHave(relation string, callback func(*JoinClause)) *DB {
	return db.powerJoinHas("PowerJoinWhereDoesntHave", relation, HasOptions{Operator: "<", Count: 1, Callback: callback})
}

// PowerJoinHasWith has check with all options available
func (db *DB) PowerJoinHasWith(relation string, opts HasOptions) *DB {
	return db.powerJoinHas("PowerJoinHasWith", relation, opts)
}

func (db *DB) powerJoinHas(scope, relation string, opts HasOptions) (tx *DB) {
	tx = db.getInstance()

	_, span := tracer.Start(tx.Statement.Context, "powerjoins."+scope, trace.WithAttributes(
		attribute.String("powerjoins.model", tx.Statement.Model),
		attribute.String("powerjoins.path", relation),
		attribute.String("powerjoins.operator", opts.Operator),
		attribute.Int("powerjoins.count", opts.Count),
	))
	defer span.End()

	if err := tx.Statement.powerJoinHas(relation, opts); err != nil {
		tx.Observer.ScopeError(scope)
		traceError(span, err)
		tx.AddError(err)
	}
	return tx
}

func (stmt *Statement) powerJoinHas(relation string, opts HasOptions) error {
	operator := strings.TrimSpace(orDefault(opts.Operator, ">="))
	switch operator {
	case "=", "<>", "!=", "<", "<=", ">", ">=":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOperator, opts.Operator)
	}

	boolean := strings.ToLower(strings.TrimSpace(orDefault(opts.Boolean, "and")))
	if boolean != "and" && boolean != "or" {
		return fmt.Errorf("%w: boolean %q", ErrInvalidOperator, opts.Boolean)
	}

	related, names, err := stmt.joinRelationship(relation, JoinOptions{Type: clause.LeftJoin, Callback: opts.Callback})
	if err != nil {
		return err
	}

	stmt.ensureRootSelect()
	stmt.groupByPrimaryKey()

	having := clause.Comparison(clause.Expr{
		SQL:  "COUNT(?)",
		Vars: []interface{}{clause.Column{Table: names.Far, Name: related.PrimaryKey}},
	}, operator, opts.Count)
	if boolean == "or" {
		having = clause.Or(having)
	}

	stmt.GroupBy.Having = append(stmt.GroupBy.Having, having)
	return nil
}
