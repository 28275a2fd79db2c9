package clause_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/kirschbaum-development/powerjoins/clause"
)

func TestJoin(t *testing.T) {
	results := []struct {
		name string
		join clause.Join
		sql  string
		vars []interface{}
	}{
		{
			name: "INNER JOIN",
			join: clause.Join{
				Type:  clause.InnerJoin,
				Table: clause.Table{Name: "posts"},
				ON: clause.Where{Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "user_id"}, Value: clause.Column{Table: "users", Name: "id"}},
				}},
			},
			sql: "INNER JOIN `posts` ON `posts`.`user_id` = `users`.`id`",
		},
		{
			name: "LEFT JOIN with alias",
			join: clause.Join{
				Type:  clause.LeftJoin,
				Table: clause.Table{Name: "categories", Alias: "c1"},
				ON: clause.Where{Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Table: "posts", Name: "category_id"}, Value: clause.Column{Table: clause.CurrentTable, Name: "id"}},
					clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "deleted_at"}, Value: nil},
				}},
			},
			sql: "LEFT JOIN `categories` AS `c1` ON `posts`.`category_id` = `c1`.`id` AND `c1`.`deleted_at` IS NULL",
		},
		{
			name: "JOIN subquery",
			join: clause.Join{
				Type:     clause.InnerJoin,
				Table:    clause.Table{Alias: "latest"},
				Subquery: clause.Expr{SQL: "SELECT MAX(?) FROM ? WHERE ? = ?", Vars: []interface{}{clause.Column{Name: "id"}, clause.Table{Name: "posts"}, clause.Column{Name: "draft"}, false}},
				ON: clause.Where{Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: clause.Column{Table: "posts", Name: "id"}},
				}},
			},
			sql:  "INNER JOIN (SELECT MAX(`id`) FROM `posts` WHERE `draft` = ?) AS `latest` ON `latest`.`id` = `posts`.`id`",
			vars: []interface{}{false},
		},
		{
			name: "CROSS JOIN",
			join: clause.Join{Type: clause.CrossJoin, Table: clause.Table{Name: "dates"}},
			sql:  "CROSS JOIN `dates`",
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v: %v", idx, result.name), func(t *testing.T) {
			builder := newBuilder()
			result.join.Build(builder)
			if builder.String() != result.sql {
				t.Errorf("expects %v, got %v", result.sql, builder.String())
			}
			if !reflect.DeepEqual(builder.Vars, result.vars) {
				t.Errorf("vars expects %v, got %v", result.vars, builder.Vars)
			}
		})
	}
}
