package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirschbaum-development/powerjoins/clause"
)

const blogDefinitions = `
models:
  - name: User
    softDeletes: deleted_at
    relations:
      - name: posts
        type: has_many
        model: Post
      - name: latestPost
        type: has_one
        model: Post
        ofMany:
          column: created_at
      - name: groups
        type: belongs_to_many
        model: Group
        pivot:
          table: group_members
      - name: comments
        type: has_many_through
        model: Comment
        through:
          model: Post
  - name: Post
    relations:
      - name: category
        type: belongs_to
        model: Category
      - name: publishedComments
        type: has_many
        model: Comment
        where:
          - column: comments.approved
            value: true
          - column: comments.spam_at
          - column: comments.votes
            operator: ">="
            value: 3
        withTrashed: true
  - name: Comment
  - name: Category
    table: post_categories
    primaryKey: uuid
  - name: Group
`

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions([]byte(blogDefinitions))
	require.NoError(t, err)
	require.Len(t, defs.Models, 5)

	r := NewRegistry(nil)
	require.NoError(t, defs.Register(r))

	category, err := r.Lookup("Category")
	require.NoError(t, err)
	assert.Equal(t, "post_categories", category.Table)
	assert.Equal(t, "uuid", category.PrimaryKey)

	user, _ := r.Lookup("User")
	assert.Equal(t, "deleted_at", user.DeletedAt)

	groups, _ := user.LookUpRelation("groups")
	assert.Equal(t, "group_members", groups.Pivot.Table)
	assert.Equal(t, "user_id", groups.Pivot.ForeignPivotKey)

	latest, _ := user.LookUpRelation("latestPost")
	assert.Equal(t, &OneOfMany{Column: "created_at", Aggregate: "MAX"}, latest.OneOfMany)

	post, _ := r.Lookup("Post")
	comments, _ := post.LookUpRelation("publishedComments")
	assert.True(t, comments.WithTrashed)
	assert.Equal(t, []clause.Expression{
		clause.Eq{Column: clause.Column{Table: "comments", Name: "approved"}, Value: true},
		clause.Eq{Column: clause.Column{Table: "comments", Name: "spam_at"}},
		clause.Gte{Column: clause.Column{Table: "comments", Name: "votes"}, Value: float64(3)},
	}, comments.Conditions)
}

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogDefinitions), 0o600))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	assert.Equal(t, "User", defs.Models[0].Name)

	_, err = LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefinitionsErrors(t *testing.T) {
	_, err := ParseDefinitions([]byte("models:\n  - name: User\n    unknown: true\n"))
	assert.Error(t, err, "unknown fields are rejected")

	defs, err := ParseDefinitions([]byte("models:\n  - name: User\n    relations:\n      - name: posts\n        type: has_some\n        model: Post\n"))
	require.NoError(t, err)
	assert.True(t, errors.Is(defs.Register(NewRegistry(nil)), ErrInvalidRelationship))

	defs, err = ParseDefinitions([]byte("models:\n  - name: User\n    relations:\n      - name: posts\n        type: has_many\n        model: Post\n"))
	require.NoError(t, err)
	assert.True(t, errors.Is(defs.Register(NewRegistry(nil)), ErrModelNotFound))
}
