package powerjoins

import (
	"fmt"
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/utils"
)

// Model specify the registered model the query starts from
//
//	db.Model("User").JoinRelationship("posts.comments")
func (db *DB) Model(name string) (tx *DB) {
	tx = db.getInstance()

	s, err := tx.Schemas.Lookup(name)
	if err != nil {
		tx.AddError(fmt.Errorf("%w: %w", ErrModelValueRequired, err))
		return
	}

	tx.Statement.Model = name
	tx.Statement.Schema = s
	tx.Statement.Table = s.Table
	return
}

// Distinct selects distinct rows
func (db *DB) Distinct() (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Distinct = true
	return
}

// Select specify columns that you want when querying, a plain column name
// is quoted, anything else is used as raw SQL with args
func (db *DB) Select(query string, args ...interface{}) (tx *DB) {
	tx = db.getInstance()

	if len(args) == 0 && (utils.IsIdentifier(query) || strings.HasSuffix(query, ".*")) {
		tx.Statement.Selects = append(tx.Statement.Selects, clause.ParseColumn(query))
		return
	}
	tx.Statement.Selects = append(tx.Statement.Selects, clause.Expr{SQL: query, Vars: args})
	return
}

func (db *DB) buildCondition(query interface{}, args []interface{}) clause.Expression {
	switch v := query.(type) {
	case clause.Expression:
		return v
	case string:
		if utils.IsIdentifier(v) {
			switch len(args) {
			case 1:
				return clause.Eq{Column: clause.ParseColumn(v), Value: args[0]}
			case 2:
				if operator, ok := args[0].(string); ok {
					return clause.Comparison(clause.ParseColumn(v), operator, args[1])
				}
			}
		}
		return clause.Expr{SQL: v, Vars: args}
	}

	db.AddError(fmt.Errorf("unsupported condition %v %v", query, args))
	return nil
}

// Where add conditions, `Where("name", "jinzhu")`, `Where("age", ">", 18)`
// or `Where("name = ? OR age > ?", "jinzhu", 18)`
func (db *DB) Where(query interface{}, args ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if cond := tx.buildCondition(query, args); cond != nil {
		tx.Statement.Wheres = append(tx.Statement.Wheres, cond)
	}
	return
}

// Or add OR conditions
func (db *DB) Or(query interface{}, args ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if cond := tx.buildCondition(query, args); cond != nil {
		tx.Statement.Wheres = append(tx.Statement.Wheres, clause.Or(cond))
	}
	return
}

// Order specify order when retrieve records from database
//
//	db.Order("name DESC")
//	db.Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}, Desc: true})
func (db *DB) Order(value interface{}) (tx *DB) {
	tx = db.getInstance()

	switch v := value.(type) {
	case clause.OrderByColumn:
		tx.Statement.OrderBy = tx.Statement.OrderBy.Merge(clause.OrderBy{Columns: []clause.OrderByColumn{v}})
	case string:
		if v != "" {
			tx.Statement.OrderBy = tx.Statement.OrderBy.Merge(clause.OrderBy{
				Columns: []clause.OrderByColumn{{Column: clause.Column{Name: v, Raw: true}}},
			})
		}
	default:
		tx.AddError(fmt.Errorf("unsupported order %v", value))
	}
	return
}

// Group specify the group method on the find
func (db *DB) Group(name string) (tx *DB) {
	tx = db.getInstance()

	column := clause.Column{Name: name, Raw: true}
	if utils.IsIdentifier(name) {
		column = clause.ParseColumn(name)
	}

	if !tx.Statement.GroupBy.HasColumn(column) {
		tx.Statement.GroupBy.Columns = append(tx.Statement.GroupBy.Columns, column)
	}
	return
}

// Having specify HAVING conditions for GROUP BY
func (db *DB) Having(query interface{}, args ...interface{}) (tx *DB) {
	tx = db.getInstance()
	if cond := tx.buildCondition(query, args); cond != nil {
		tx.Statement.GroupBy.Having = append(tx.Statement.GroupBy.Having, cond)
	}
	return
}

// Limit specify the number of records to be retrieved
func (db *DB) Limit(limit int) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Limit = &limit
	return
}

// Offset specify the number of records to skip before starting to return the records
func (db *DB) Offset(offset int) (tx *DB) {
	tx = db.getInstance()
	tx.Statement.Offset = &offset
	return
}
