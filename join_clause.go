package powerjoins

import (
	"fmt"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// JoinClause one JOIN fragment built from a relationship. Columns of the
// joined table that are part of the relationship keys are stored with
// clause.CurrentTable and resolve to the alias, or table, when rendered.
type JoinClause struct {
	Type       clause.JoinType
	Table      string
	Alias      string
	Subquery   clause.Expression
	Conditions []clause.Expression
	// Model is nil for pivot tables
	Model    *schema.Schema
	Relation *schema.Relationship

	parentTable string
	stmt        *Statement
	dryRun      bool
	err         error
}

// Name returns the alias, or the table when the join has none
func (join *JoinClause) Name() string {
	if join.Alias != "" {
		return join.Alias
	}
	return join.Table
}

// Error returns the errors recorded while building the join
func (join *JoinClause) Error() error {
	return join.err
}

// AddError records err on the join
func (join *JoinClause) AddError(err error) {
	if join.err == nil {
		join.err = err
	} else if err != nil {
		join.err = fmt.Errorf("%v; %w", join.err, err)
	}
}

func (join *JoinClause) selfJoin() bool {
	return join.parentTable != "" && join.parentTable == join.Table
}

// As aliases the joined table, conditions already attached that reference
// the table are rewritten to the alias. Joins of a table onto itself only
// move their own key columns.
func (join *JoinClause) As(alias string) *JoinClause {
	if alias == "" || alias == join.Alias {
		return join
	}

	previous := join.Alias
	join.Alias = alias
	if join.dryRun {
		return join
	}

	for idx, cond := range join.Conditions {
		if previous != "" {
			cond = clause.RewriteTable(cond, previous, alias)
		}
		if !join.selfJoin() {
			cond = clause.RewriteTable(cond, join.Table, alias)
		}
		join.Conditions[idx] = cond
	}
	return join
}

// column parses a column operand, the joined table's name is replaced by
// the active alias
func (join *JoinClause) column(name string) clause.Column {
	column := clause.ParseColumn(name)
	if join.Alias != "" && !column.Raw && column.Table == join.Table && !join.selfJoin() {
		column.Table = join.Alias
	}
	return column
}

func (join *JoinClause) condition(column string, args []interface{}) clause.Expression {
	switch len(args) {
	case 0:
		return clause.Expr{SQL: column}
	case 1:
		return clause.Eq{Column: join.column(column), Value: args[0]}
	default:
		operator, _ := args[0].(string)
		return clause.Comparison(join.column(column), operator, args[1])
	}
}

// On compares two columns, `On("posts.author_id", "=", "authors.id")`
func (join *JoinClause) On(first, operator, second string) *JoinClause {
	join.Conditions = append(join.Conditions, clause.Comparison(join.column(first), operator, join.column(second)))
	return join
}

// OrOn like On, combined with OR
func (join *JoinClause) OrOn(first, operator, second string) *JoinClause {
	join.Conditions = append(join.Conditions, clause.Or(clause.Comparison(join.column(first), operator, join.column(second))))
	return join
}

// Where compares a column with a value, `Where("published", true)` or
// `Where("votes", ">", 10)`; a single string argument is raw SQL
func (join *JoinClause) Where(column string, args ...interface{}) *JoinClause {
	join.Conditions = append(join.Conditions, join.condition(column, args))
	return join
}

// OrWhere like Where, combined with OR
func (join *JoinClause) OrWhere(column string, args ...interface{}) *JoinClause {
	join.Conditions = append(join.Conditions, clause.Or(join.condition(column, args)))
	return join
}

func (join *JoinClause) WhereNull(column string) *JoinClause {
	join.Conditions = append(join.Conditions, clause.Eq{Column: join.column(column)})
	return join
}

func (join *JoinClause) WhereNotNull(column string) *JoinClause {
	join.Conditions = append(join.Conditions, clause.Neq{Column: join.column(column)})
	return join
}

func (join *JoinClause) WhereIn(column string, values ...interface{}) *JoinClause {
	join.Conditions = append(join.Conditions, clause.IN{Column: join.column(column), Values: values})
	return join
}

// WhereNested groups the conditions added by fc in parentheses
func (join *JoinClause) WhereNested(fc func(*JoinClause)) *JoinClause {
	nested := &JoinClause{
		Type:        join.Type,
		Table:       join.Table,
		Alias:       join.Alias,
		Model:       join.Model,
		Relation:    join.Relation,
		parentTable: join.parentTable,
		stmt:        join.stmt,
		dryRun:      join.dryRun,
	}
	fc(nested)

	if nested.err != nil {
		join.AddError(nested.err)
	}
	if len(nested.Conditions) > 0 {
		join.Conditions = append(join.Conditions, clause.And(nested.Conditions...))
	}
	return join
}

// Clauses appends conditions as they are
func (join *JoinClause) Clauses(exprs ...clause.Expression) *JoinClause {
	join.Conditions = append(join.Conditions, exprs...)
	return join
}

// WithTrashed drops the soft delete check of the joined model
func (join *JoinClause) WithTrashed() *JoinClause {
	if join.Model == nil || !join.Model.UsesSoftDeletes() {
		return join
	}

	conditions := join.Conditions[:0:0]
	for _, cond := range join.Conditions {
		if !join.isSoftDeleteCheck(cond) {
			conditions = append(conditions, cond)
		}
	}
	join.Conditions = conditions
	return join
}

// OnlyTrashed turns the soft delete check of the joined model into NOT NULL
func (join *JoinClause) OnlyTrashed() *JoinClause {
	if join.Model == nil || !join.Model.UsesSoftDeletes() {
		return join
	}

	for idx, cond := range join.Conditions {
		if join.isSoftDeleteCheck(cond) {
			join.Conditions[idx] = clause.Neq(cond.(clause.Eq))
		}
	}
	return join
}

func (join *JoinClause) isSoftDeleteCheck(expr clause.Expression) bool {
	eq, ok := expr.(clause.Eq)
	if !ok || eq.Value != nil {
		return false
	}

	column, ok := eq.Column.(clause.Column)
	if !ok || column.Raw || column.Name != join.Model.DeletedAt {
		return false
	}
	return column.Table == clause.CurrentTable || column.Table == join.Table || column.Table == join.Alias
}

func (join *JoinClause) Inner() *JoinClause {
	join.Type = clause.InnerJoin
	return join
}

func (join *JoinClause) Left() *JoinClause {
	join.Type = clause.LeftJoin
	return join
}

func (join *JoinClause) Right() *JoinClause {
	join.Type = clause.RightJoin
	return join
}

// Scope calls the scope registered as name for the joined model
func (join *JoinClause) Scope(name string, args ...interface{}) *JoinClause {
	if join.dryRun {
		return join
	}

	model := "pivot"
	if join.Model != nil {
		model = join.Model.Name
	}

	var fn ScopeFunc
	if join.stmt != nil && join.stmt.DB != nil {
		fn = join.stmt.DB.scopes.lookup(model, name)
	}

	if fn == nil {
		join.AddError(fmt.Errorf("%w: call to undefined method JoinClause.%s(), %s has no scope %q", ErrScopeNotFound, name, model, name))
		return join
	}

	fn(join, args...)
	return join
}

// Build renders the JOIN fragment
func (join *JoinClause) Build(builder clause.Builder) {
	clause.Join{
		Type:     join.Type,
		Table:    clause.Table{Name: join.Table, Alias: join.Alias},
		Subquery: join.Subquery,
		ON:       clause.Where{Exprs: join.Conditions},
	}.Build(builder)
}

func (join *JoinClause) clone(stmt *Statement) *JoinClause {
	newJoin := *join
	newJoin.stmt = stmt
	if len(join.Conditions) > 0 {
		newJoin.Conditions = make([]clause.Expression, len(join.Conditions))
		copy(newJoin.Conditions, join.Conditions)
	}
	return &newJoin
}
