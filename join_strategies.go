package powerjoins

import (
	"fmt"
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// joinRequest joins one relationship of a path
type joinRequest struct {
	stmt     *Statement
	relation *schema.Relationship
	parent   *schema.Schema
	// related is the morphable model for morph_to relationships
	related *schema.Schema
	// parentName is the alias or table the parent model was joined with
	parentName string
	joinType   clause.JoinType
	aliases    Aliases

	callback               func(*JoinClause)
	pivotCallback          func(*JoinClause)
	disableExtraConditions bool
}

// apply builds the joins of the relationship. Nothing is added to the
// statement here; the caller appends the joins once all of them succeeded.
func (req *joinRequest) apply() ([]*JoinClause, Aliases, error) {
	switch req.relation.Type {
	case schema.BelongsTo:
		return req.belongsTo()
	case schema.HasOne, schema.HasMany:
		return req.hasOneOrMany()
	case schema.HasOneThrough, schema.HasManyThrough:
		return req.hasThrough()
	case schema.BelongsToMany, schema.MorphToMany, schema.MorphedByMany:
		return req.belongsToMany()
	case schema.MorphOne, schema.MorphMany:
		return req.morphOneOrMany()
	case schema.MorphTo:
		return req.morphTo()
	}
	return nil, Aliases{}, fmt.Errorf("%w: %s has unknown type %q", schema.ErrInvalidRelationship, req.relation.Name, req.relation.Type)
}

func (req *joinRequest) newJoin(table string, model *schema.Schema) *JoinClause {
	return &JoinClause{
		Type:        req.joinType,
		Table:       table,
		Model:       model,
		Relation:    req.relation,
		parentTable: req.parent.Table,
		stmt:        req.stmt,
	}
}

func (req *joinRequest) softDeletes(model *schema.Schema) bool {
	return model != nil && model.UsesSoftDeletes() && !req.disableExtraConditions && !req.relation.WithTrashed
}

func (req *joinRequest) softDelete(join *JoinClause) {
	if req.softDeletes(join.Model) {
		join.Conditions = append(join.Conditions, softDeleteCondition(join.Model))
	}
}

func (req *joinRequest) finish(join *JoinClause, callback func(*JoinClause)) error {
	if callback != nil {
		callback(join)
	}
	return join.Error()
}

// far completes the join of the related model: soft delete check, replayed
// relationship conditions, then the caller's callback
func (req *joinRequest) far(join *JoinClause) error {
	req.softDelete(join)
	if !req.disableExtraConditions {
		keys := req.relation.ExistenceKeys(req.parent, req.related)
		applyExtraConditions(join, req.relation.Conditions, keys, req.related.Table)
	}
	return req.finish(join, req.callback)
}

func keyOr(key string, model *schema.Schema) string {
	if key != "" {
		return key
	}
	return model.PrimaryKey
}

// parent.foreign_key = related.owner_key
func (req *joinRequest) belongsTo() ([]*JoinClause, Aliases, error) {
	rel, related := req.relation, req.related

	join := req.newJoin(related.Table, related).As(req.aliases.Far)
	join.Conditions = append(join.Conditions, clause.Eq{
		Column: clause.Column{Table: req.parentName, Name: rel.ForeignKey},
		Value:  clause.Column{Table: clause.CurrentTable, Name: keyOr(rel.OwnerKey, related)},
	})

	err := req.far(join)
	return []*JoinClause{join}, Aliases{Far: join.Name()}, err
}

// related.foreign_key = parent.local_key
func (req *joinRequest) hasOneOrMany() ([]*JoinClause, Aliases, error) {
	var (
		rel, related = req.relation, req.related
		joins        []*JoinClause
	)

	join := req.newJoin(related.Table, related).As(req.aliases.Far)
	join.Conditions = append(join.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: rel.ForeignKey},
		Value:  clause.Column{Table: req.parentName, Name: keyOr(rel.LocalKey, req.parent)},
	})

	if rel.OneOfMany != nil {
		sub := req.oneOfMany(join.Name())
		joins = append(joins, sub)
		join.Conditions = append(join.Conditions, clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: rel.OneOfMany.Column},
			Value:  clause.Column{Table: sub.Name(), Name: rel.OneOfMany.Column + "_aggregate"},
		})
	}

	err := req.far(join)
	return append(joins, join), Aliases{Far: join.Name()}, err
}

// oneOfMany joins the aggregate of the related rows per parent, keyed by the
// one of many relationship's own foreign and local keys
func (req *joinRequest) oneOfMany(farName string) *JoinClause {
	var (
		rel, related = req.relation, req.related
		column       = clause.Column{Table: related.Table, Name: rel.OneOfMany.Column}
		foreignKey   = clause.Column{Table: related.Table, Name: rel.ForeignKey}
		sql          = "SELECT ? AS ?,? FROM ?"
		vars         = []interface{}{
			clause.Expr{SQL: strings.ToUpper(rel.OneOfMany.Aggregate) + "(?)", Vars: []interface{}{column}},
			clause.Column{Name: rel.OneOfMany.Column + "_aggregate"},
			foreignKey,
			clause.Table{Name: related.Table},
		}
	)

	if req.softDeletes(related) {
		sql += " WHERE ? IS NULL"
		vars = append(vars, clause.Column{Table: related.Table, Name: related.DeletedAt})
	}
	sql += " GROUP BY ?"
	vars = append(vars, foreignKey)

	sub := req.newJoin(aliasPrefix(farName)+"_of_many", nil)
	sub.Subquery = clause.Expr{SQL: sql, Vars: vars}
	sub.Conditions = append(sub.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: rel.ForeignKey},
		Value:  clause.Column{Table: req.parentName, Name: keyOr(rel.LocalKey, req.parent)},
	})
	return sub
}

// through.first_key = parent.local_key, related.second_key = through.second_local_key
func (req *joinRequest) hasThrough() ([]*JoinClause, Aliases, error) {
	rel, related := req.relation, req.related

	through, err := rel.ThroughSchema()
	if err != nil {
		return nil, Aliases{}, err
	}

	throughJoin := req.newJoin(through.Table, through).As(req.aliases.Pivot)
	throughJoin.Conditions = append(throughJoin.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: rel.Through.FirstKey},
		Value:  clause.Column{Table: req.parentName, Name: keyOr(rel.Through.LocalKey, req.parent)},
	})
	req.softDelete(throughJoin)

	if err := req.finish(throughJoin, req.pivotCallback); err != nil {
		return nil, Aliases{}, err
	}

	join := req.newJoin(related.Table, related).As(req.aliases.Far)
	join.Conditions = append(join.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: rel.Through.SecondKey},
		Value:  clause.Column{Table: throughJoin.Name(), Name: keyOr(rel.Through.SecondLocalKey, through)},
	})

	err = req.far(join)
	return []*JoinClause{throughJoin, join}, Aliases{Far: join.Name(), Pivot: throughJoin.Name()}, err
}

// pivot.foreign_pivot_key = parent.parent_key, related.related_key = pivot.related_pivot_key
func (req *joinRequest) belongsToMany() ([]*JoinClause, Aliases, error) {
	var (
		rel, related = req.relation, req.related
		pivot        = rel.Pivot
	)

	pivotJoin := req.newJoin(pivot.Table, nil).As(req.aliases.Pivot)
	pivotJoin.Conditions = append(pivotJoin.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: pivot.ForeignPivotKey},
		Value:  clause.Column{Table: req.parentName, Name: keyOr(pivot.ParentKey, req.parent)},
	})

	switch rel.Type {
	case schema.MorphToMany:
		pivotJoin.Conditions = append(pivotJoin.Conditions, clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: pivot.MorphType},
			Value:  orDefault(pivot.MorphClass, req.parent.MorphClass),
		})
	case schema.MorphedByMany:
		pivotJoin.Conditions = append(pivotJoin.Conditions, clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: pivot.MorphType},
			Value:  orDefault(pivot.MorphClass, related.MorphClass),
		})
	}

	if err := req.finish(pivotJoin, req.pivotCallback); err != nil {
		return nil, Aliases{}, err
	}

	join := req.newJoin(related.Table, related).As(req.aliases.Far)
	join.Conditions = append(join.Conditions, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: keyOr(pivot.RelatedKey, related)},
		Value:  clause.Column{Table: pivotJoin.Name(), Name: pivot.RelatedPivotKey},
	})

	err := req.far(join)
	return []*JoinClause{pivotJoin, join}, Aliases{Far: join.Name(), Pivot: pivotJoin.Name()}, err
}

// related.id_column = parent.local_key AND related.type_column = parent morph class
func (req *joinRequest) morphOneOrMany() ([]*JoinClause, Aliases, error) {
	var (
		rel, related = req.relation, req.related
		morph        = rel.Polymorphic
	)

	join := req.newJoin(related.Table, related).As(req.aliases.Far)
	join.Conditions = append(join.Conditions,
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: morph.IDColumn},
			Value:  clause.Column{Table: req.parentName, Name: keyOr(rel.LocalKey, req.parent)},
		},
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: morph.TypeColumn},
			Value:  orDefault(morph.MorphClass, req.parent.MorphClass),
		},
	)

	err := req.far(join)
	return []*JoinClause{join}, Aliases{Far: join.Name()}, err
}

// morphable.owner_key = parent.id_column AND parent.type_column = morphable morph class
func (req *joinRequest) morphTo() ([]*JoinClause, Aliases, error) {
	var (
		rel, morphable = req.relation, req.related
		morph          = rel.Polymorphic
	)

	join := req.newJoin(morphable.Table, morphable).As(req.aliases.Far)
	join.Conditions = append(join.Conditions,
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: keyOr(rel.OwnerKey, morphable)},
			Value:  clause.Column{Table: req.parentName, Name: morph.IDColumn},
		},
		clause.Eq{
			Column: clause.Column{Table: req.parentName, Name: morph.TypeColumn},
			Value:  morphable.MorphClass,
		},
	)

	err := req.far(join)
	return []*JoinClause{join}, Aliases{Far: join.Name()}, err
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
