package clause_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirschbaum-development/powerjoins/clause"
)

func TestGroupBy(t *testing.T) {
	results := []struct {
		GroupBy clause.GroupBy
		Result  string
		Vars    []interface{}
	}{
		{
			clause.GroupBy{
				Columns: []clause.Column{{Table: clause.CurrentTable, Name: clause.PrimaryKey}},
			},
			"`users`.`id`", nil,
		},
		{
			clause.GroupBy{
				Columns: []clause.Column{{Name: "role"}},
				Having:  []clause.Expression{clause.Eq{Column: "role", Value: "admin"}},
			},
			"`role` HAVING `role` = ?", []interface{}{"admin"},
		},
		{
			clause.GroupBy{
				Columns: []clause.Column{{Name: "role"}, {Name: "gender"}},
				Having: []clause.Expression{
					clause.Eq{Column: "role", Value: "admin"},
					clause.Neq{Column: "gender", Value: "U"},
				},
			},
			"`role`,`gender` HAVING `role` = ? AND `gender` <> ?", []interface{}{"admin", "U"},
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			builder := newBuilder()
			result.GroupBy.Build(builder)

			assert.Equal(t, result.Result, builder.String())
			assert.Equal(t, result.Vars, builder.Vars)
		})
	}
}

func TestGroupByHasColumn(t *testing.T) {
	groupBy := clause.GroupBy{Columns: []clause.Column{{Table: "users", Name: "id"}}}

	assert.True(t, groupBy.HasColumn(clause.Column{Table: "users", Name: "id"}))
	assert.False(t, groupBy.HasColumn(clause.Column{Name: "id"}))
	assert.False(t, groupBy.HasColumn(clause.Column{Table: "users", Name: "id", Raw: true}))
}
