package powerjoins

import (
	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// softDeleteCondition `deleted_at IS NULL` for the table being rendered
func softDeleteCondition(model *schema.Schema) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: model.DeletedAt}, Value: nil}
}

// softDeleteQueryClause scopes the root model to rows that are not deleted
func (stmt *Statement) softDeleteQueryClause() []clause.Expression {
	if stmt.Unscoped || stmt.Schema == nil || !stmt.Schema.UsesSoftDeletes() {
		return nil
	}
	return []clause.Expression{softDeleteCondition(stmt.Schema)}
}

// Unscoped disables the soft delete scope of the root model
func (db *DB) Unscoped() (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Unscoped = true
	return
}
