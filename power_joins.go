package powerjoins

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// JoinOptions options of JoinRelationshipWith
type JoinOptions struct {
	// Type inner join unless set
	Type clause.JoinType
	// Callback is applied to the join of the last relationship in the path
	Callback func(*JoinClause)
	// Callbacks by relationship name or table name. Pivot and through
	// tables are matched by table name.
	Callbacks map[string]func(*JoinClause)
	// UseAlias joins every table under a generated alias
	UseAlias bool
	// DisableExtraConditions skips soft delete checks and the
	// relationship's default conditions
	DisableExtraConditions bool
	// Morphable the model morph_to relationships join
	Morphable string
}

func (opts JoinOptions) callbackFor(segment, table string, last bool) func(*JoinClause) {
	if fc, ok := opts.Callbacks[segment]; ok {
		return fc
	}
	if fc, ok := opts.Callbacks[table]; ok {
		return fc
	}
	if last {
		return opts.Callback
	}
	return nil
}

func chainCallbacks(callbacks []func(*JoinClause)) func(*JoinClause) {
	switch len(callbacks) {
	case 0:
		return nil
	case 1:
		return callbacks[0]
	}

	return func(join *JoinClause) {
		for _, fc := range callbacks {
			if fc != nil {
				fc(join)
			}
		}
	}
}

// JoinRelationship joins every relationship of the dotted path, e.g.
// `posts.comments`. Relationships already joined on the query are skipped.
func (db *DB) JoinRelationship(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("JoinRelationship", path, JoinOptions{Callback: chainCallbacks(callbacks)})
}

func (db *DB) LeftJoinRelationship(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("LeftJoinRelationship", path, JoinOptions{Type: clause.LeftJoin, Callback: chainCallbacks(callbacks)})
}

func (db *DB) RightJoinRelationship(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("RightJoinRelationship", path, JoinOptions{Type: clause.RightJoin, Callback: chainCallbacks(callbacks)})
}

// JoinRelationshipUsingAlias joins the path with generated table aliases
func (db *DB) JoinRelationshipUsingAlias(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("JoinRelationshipUsingAlias", path, JoinOptions{UseAlias: true, Callback: chainCallbacks(callbacks)})
}

func (db *DB) LeftJoinRelationshipUsingAlias(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("LeftJoinRelationshipUsingAlias", path, JoinOptions{Type: clause.LeftJoin, UseAlias: true, Callback: chainCallbacks(callbacks)})
}

func (db *DB) RightJoinRelationshipUsingAlias(path string, callbacks ...func(*JoinClause)) *DB {
	return db.joinRelationship("RightJoinRelationshipUsingAlias", path, JoinOptions{Type: clause.RightJoin, UseAlias: true, Callback: chainCallbacks(callbacks)})
}

// JoinRelationshipWith joins the path with all options available
func (db *DB) JoinRelationshipWith(path string, opts JoinOptions) *DB {
	return db.joinRelationship("JoinRelationshipWith", path, opts)
}

func (db *DB) joinRelationship(scope, path string, opts JoinOptions) (tx *DB) {
	tx = db.getInstance()

	_, span := tracer.Start(tx.Statement.Context, "powerjoins."+scope, trace.WithAttributes(
		attribute.String("powerjoins.model", tx.Statement.Model),
		attribute.String("powerjoins.path", path),
		attribute.Bool("powerjoins.use_alias", opts.UseAlias),
	))
	defer span.End()

	if _, _, err := tx.Statement.joinRelationship(path, opts); err != nil {
		tx.Observer.ScopeError(scope)
		traceError(span, err)
		tx.AddError(err)
	}
	return tx
}

// joinRelationship walks path one relationship at a time and returns the
// model the path ends at with the names its tables were joined as
func (stmt *Statement) joinRelationship(path string, opts JoinOptions) (related *schema.Schema, names Aliases, err error) {
	if stmt.Schema == nil {
		return nil, names, fmt.Errorf("%w: call Model before joining %s", ErrModelValueRequired, path)
	}

	var (
		session  = newJoinSession(stmt)
		current  = stmt.Schema
		segments = strings.Split(path, ".")
		joinType = opts.Type
		observer = stmt.DB.Observer
	)
	defer session.clear()

	if joinType == "" {
		joinType = clause.InnerJoin
	}

	if observer == nil {
		observer = nopObserver{}
	}

	// a path either joins completely or leaves the statement untouched
	var (
		joinCount = len(stmt.Joins)
		marked    []string
	)
	defer func() {
		if err != nil {
			stmt.Joins = stmt.Joins[:joinCount]
			for _, key := range marked {
				delete(stmt.joined, key)
			}
		}
	}()

	for idx, segment := range segments {
		var (
			last       = idx == len(segments)-1
			parentPath = strings.Join(segments[:idx], ".")
			pathSoFar  = strings.Join(segments[:idx+1], ".")
		)

		rel, err := current.LookUpRelation(segment)
		if err != nil {
			return nil, names, err
		}

		if related, err = stmt.relatedSchema(rel, opts.Morphable); err != nil {
			return nil, names, err
		}

		pivotTable, err := pivotTableOf(rel)
		if err != nil {
			return nil, names, err
		}

		var (
			callback      = opts.callbackFor(segment, related.Table, last)
			pivotCallback func(*JoinClause)
		)
		if pivotTable != "" {
			pivotCallback = opts.Callbacks[pivotTable]
		}

		aliases := Aliases{
			Far:   discoverAlias(callback, related.Table, related),
			Pivot: discoverAlias(pivotCallback, pivotTable, nil),
		}

		key := joinKey(aliases.Far, related.Table, pathSoFar, opts.UseAlias)
		if joined, ok := stmt.alreadyJoined(key); ok {
			stmt.DB.Logger.Info(stmt.Context, "relationship %s already joined as %s", pathSoFar, joined.Far)
			observer.JoinSkipped(string(rel.Type))
			session.remember(pathSoFar, joined)
			names, current = joined, related
			continue
		}

		if opts.UseAlias {
			aliases = session.generateAlias(aliases, related.Table, pivotTable, pathSoFar)
		}

		req := &joinRequest{
			stmt:                   stmt,
			relation:               rel,
			parent:                 current,
			related:                related,
			parentName:             session.current(parentPath),
			joinType:               joinType,
			aliases:                aliases,
			callback:               callback,
			pivotCallback:          pivotCallback,
			disableExtraConditions: opts.DisableExtraConditions,
		}

		joins, applied, err := req.apply()
		if err != nil {
			return nil, names, fmt.Errorf("joining %s: %w", pathSoFar, err)
		}

		stmt.Joins = append(stmt.Joins, joins...)
		stmt.markJoined(key, applied)
		marked = append(marked, key)
		session.remember(pathSoFar, applied)
		observer.JoinApplied(string(rel.Type), string(joins[len(joins)-1].Type))

		names, current = applied, related
	}

	return related, names, nil
}

// joinKey names a join in the statement memo. A join under a generated alias
// gets its own key: it is never the plain table, and a new alias is generated
// on every call.
func joinKey(alias, table, path string, generated bool) string {
	switch {
	case alias != "":
		return alias + "|" + path
	case generated:
		return "@" + table + "|" + path
	}
	return table + "|" + path
}

func (stmt *Statement) relatedSchema(rel *schema.Relationship, morphable string) (*schema.Schema, error) {
	if rel.Type != schema.MorphTo {
		return rel.RelatedSchema()
	}

	if morphable == "" {
		return nil, fmt.Errorf("%w: %s.%s is a morph_to relationship", ErrMorphableRequired, rel.Schema.Name, rel.Name)
	}
	return stmt.DB.Schemas.Lookup(morphable)
}

// pivotTableOf the pivot or through table of relationships joined through one
func pivotTableOf(rel *schema.Relationship) (string, error) {
	switch rel.Type {
	case schema.HasOneThrough, schema.HasManyThrough:
		through, err := rel.ThroughSchema()
		if err != nil {
			return "", err
		}
		return through.Table, nil
	case schema.BelongsToMany, schema.MorphToMany, schema.MorphedByMany:
		return rel.Pivot.Table, nil
	}
	return "", nil
}

// discoverAlias runs fc against a scratch join to find the alias it sets
func discoverAlias(fc func(*JoinClause), table string, model *schema.Schema) string {
	if fc == nil {
		return ""
	}

	scratch := &JoinClause{Table: table, Model: model, dryRun: true}
	fc(scratch)
	return scratch.Alias
}
