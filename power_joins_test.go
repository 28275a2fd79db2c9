package powerjoins_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/schema"
)

const (
	joinPosts    = `INNER JOIN "posts" ON "posts"."user_id" = "users"."id"`
	joinComments = `INNER JOIN "comments" ON "comments"."post_id" = "posts"."id" AND "comments"."deleted_at" IS NULL`
)

func TestJoinRelationship(t *testing.T) {
	db := newBlogDB(t, nil)

	tests := []struct {
		name     string
		query    *powerjoins.DB
		expected string
		vars     []interface{}
	}{
		{
			name:     "has many",
			query:    db.Model("User").JoinRelationship("posts"),
			expected: `SELECT * FROM "users" ` + joinPosts,
		},
		{
			name:     "nested path",
			query:    db.Model("User").JoinRelationship("posts.comments"),
			expected: `SELECT * FROM "users" ` + joinPosts + ` ` + joinComments,
		},
		{
			name:     "belongs to many",
			query:    db.Model("User").JoinRelationship("groups"),
			expected: `SELECT * FROM "users" INNER JOIN "group_members" ON "group_members"."user_id" = "users"."id" INNER JOIN "groups" ON "groups"."id" = "group_members"."group_id"`,
		},
		{
			name: "alias from callback",
			query: db.Model("Post").JoinRelationship("category", func(join *powerjoins.JoinClause) {
				join.As("category_alias")
			}),
			expected: `SELECT * FROM "posts" INNER JOIN "categories" AS "category_alias" ON "posts"."category_id" = "category_alias"."id"`,
		},
		{
			name:     "belongs to",
			query:    db.Model("Comment").JoinRelationship("post.user"),
			expected: `SELECT * FROM "comments" INNER JOIN "posts" ON "comments"."post_id" = "posts"."id" INNER JOIN "users" ON "posts"."user_id" = "users"."id" WHERE "comments"."deleted_at" IS NULL`,
		},
		{
			name:     "has many through",
			query:    db.Model("User").JoinRelationship("postComments"),
			expected: `SELECT * FROM "users" INNER JOIN "posts" ON "posts"."user_id" = "users"."id" ` + joinComments,
		},
		{
			name:     "morph many",
			query:    db.Model("User").JoinRelationship("images"),
			expected: `SELECT * FROM "users" INNER JOIN "images" ON "images"."imageable_id" = "users"."id" AND "images"."imageable_type" = ?`,
			vars:     []interface{}{"User"},
		},
		{
			name:     "morph to",
			query:    db.Model("Image").JoinRelationshipWith("imageable", powerjoins.JoinOptions{Morphable: "Post"}),
			expected: `SELECT * FROM "images" INNER JOIN "posts" ON "posts"."id" = "images"."imageable_id" AND "images"."imageable_type" = ?`,
			vars:     []interface{}{"Post"},
		},
		{
			name:     "morph to many",
			query:    db.Model("Post").JoinRelationship("tags"),
			expected: `SELECT * FROM "posts" INNER JOIN "taggables" ON "taggables"."taggable_id" = "posts"."id" AND "taggables"."taggable_type" = ? INNER JOIN "tags" ON "tags"."id" = "taggables"."tag_id"`,
			vars:     []interface{}{"Post"},
		},
		{
			name:     "morphed by many",
			query:    db.Model("Tag").JoinRelationship("posts"),
			expected: `SELECT * FROM "tags" INNER JOIN "taggables" ON "taggables"."tag_id" = "tags"."id" AND "taggables"."taggable_type" = ? INNER JOIN "posts" ON "posts"."id" = "taggables"."taggable_id"`,
			vars:     []interface{}{"Post"},
		},
		{
			name:  "latest of many",
			query: db.Model("User").JoinRelationship("latestPost"),
			expected: `SELECT * FROM "users" ` +
				`INNER JOIN (SELECT MAX("posts"."created_at") AS "created_at_aggregate","posts"."user_id" FROM "posts" GROUP BY "posts"."user_id") AS "posts_of_many" ON "posts_of_many"."user_id" = "users"."id" ` +
				`INNER JOIN "posts" ON "posts"."user_id" = "users"."id" AND "posts"."created_at" = "posts_of_many"."created_at_aggregate"`,
		},
		{
			name:     "left join",
			query:    db.Model("User").LeftJoinRelationship("posts"),
			expected: `SELECT * FROM "users" LEFT JOIN "posts" ON "posts"."user_id" = "users"."id"`,
		},
		{
			name:     "right join",
			query:    db.Model("User").RightJoinRelationship("posts"),
			expected: `SELECT * FROM "users" RIGHT JOIN "posts" ON "posts"."user_id" = "users"."id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := toSQL(t, tt.query)
			assert.Equal(t, tt.expected, sql)
			if len(tt.vars) == 0 {
				assert.Empty(t, vars)
			} else {
				assert.Equal(t, tt.vars, vars)
			}
		})
	}
}

func TestJoinRelationshipIsIdempotent(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, _ := toSQL(t, db.Model("User").JoinRelationship("posts").JoinRelationship("posts"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)

	sql, _ = toSQL(t, db.Model("User").JoinRelationship("posts.comments").LeftJoinRelationship("posts").JoinRelationship("posts.comments"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+joinComments, sql)

	sql, _ = toSQL(t, db.Model("User").JoinRelationshipUsingAlias("posts").JoinRelationshipUsingAlias("posts"))
	assert.Equal(t, 1, strings.Count(sql, "JOIN"))
}

func TestCloneIsolation(t *testing.T) {
	db := newBlogDB(t, nil)
	base := db.Model("User").JoinRelationship("posts")

	withComments := base.Clone().JoinRelationship("posts.comments")
	withGroups := base.Clone().LeftJoinRelationship("groups")

	sql, _ := toSQL(t, base)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)

	sql, _ = toSQL(t, withComments)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+joinComments, sql)

	sql, _ = toSQL(t, withGroups)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` LEFT JOIN "group_members" ON "group_members"."user_id" = "users"."id" LEFT JOIN "groups" ON "groups"."id" = "group_members"."group_id"`, sql)

	// the comments joined on the clone are not remembered by base
	sql, _ = toSQL(t, base.JoinRelationship("posts.comments"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+joinComments, sql)
}

func TestCloneIsolationAfterDivergence(t *testing.T) {
	const (
		innerGroups = `INNER JOIN "group_members" ON "group_members"."user_id" = "users"."id" INNER JOIN "groups" ON "groups"."id" = "group_members"."group_id"`
		leftGroups  = `LEFT JOIN "group_members" ON "group_members"."user_id" = "users"."id" LEFT JOIN "groups" ON "groups"."id" = "group_members"."group_id"`
	)

	db := newBlogDB(t, nil)
	base := db.Model("User").JoinRelationship("posts")
	clone := base.Clone()
	sibling := base.Clone()

	// base is changed in place after the clones were taken
	base.JoinRelationship("groups")

	sql, _ := toSQL(t, base)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+innerGroups, sql)

	sql, _ = toSQL(t, clone)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)

	// groups is not remembered as joined on the clone
	sql, _ = toSQL(t, clone.LeftJoinRelationship("groups"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+leftGroups, sql)

	// the clone keeps its own query for later chains
	withComments := clone.JoinRelationship("posts.comments")
	sql, _ = toSQL(t, withComments)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+joinComments, sql)

	// joins on one clone never reach a sibling
	withComments.JoinRelationship("groups")
	sql, _ = toSQL(t, sibling)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)

	sql, _ = toSQL(t, sibling.JoinRelationship("posts.comments"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` `+joinComments, sql)
}

func TestSessionCopiesStatement(t *testing.T) {
	db := newBlogDB(t, nil)
	base := db.Model("User").JoinRelationship("posts")
	tx := base.Debug()

	base.JoinRelationship("groups")

	sql, _ := toSQL(t, tx)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)
}

func TestAliasedAndPlainJoinsAreDistinct(t *testing.T) {
	const (
		plain   = `INNER JOIN "posts" ON "posts"."user_id" = "users"."id"`
		aliased = `INNER JOIN "posts" AS "posts_1" ON "posts_1"."user_id" = "users"."id"`
	)

	db := newBlogDB(t, &powerjoins.Config{AliasGenerator: &countingAliases{}})
	sql, _ := toSQL(t, db.Model("User").JoinRelationship("posts").JoinRelationshipUsingAlias("posts"))
	assert.Equal(t, `SELECT * FROM "users" `+plain+` `+aliased, sql)

	db = newBlogDB(t, &powerjoins.Config{AliasGenerator: &countingAliases{}})
	sql, _ = toSQL(t, db.Model("User").JoinRelationshipUsingAlias("posts").JoinRelationship("posts"))
	assert.Equal(t, `SELECT * FROM "users" `+aliased+` `+plain, sql)

	// both forms are still memoized on their own
	db = newBlogDB(t, &powerjoins.Config{AliasGenerator: &countingAliases{}})
	sql, _ = toSQL(t, db.Model("User").
		JoinRelationshipUsingAlias("posts").JoinRelationship("posts").
		JoinRelationshipUsingAlias("posts").JoinRelationship("posts"))
	assert.Equal(t, `SELECT * FROM "users" `+aliased+` `+plain, sql)
}

func TestJoinRelationshipUsingAlias(t *testing.T) {
	db := newBlogDB(t, &powerjoins.Config{AliasGenerator: &countingAliases{}})

	sql, _ := toSQL(t, db.Model("Category").JoinRelationshipUsingAlias("parent.parent"))
	assert.Equal(t, `SELECT * FROM "categories" `+
		`INNER JOIN "categories" AS "categories_1" ON "categories"."parent_id" = "categories_1"."id" `+
		`INNER JOIN "categories" AS "categories_2" ON "categories_1"."parent_id" = "categories_2"."id"`, sql)

	sql, _ = toSQL(t, db.Model("User").LeftJoinRelationshipUsingAlias("groups"))
	assert.Equal(t, `SELECT * FROM "users" `+
		`LEFT JOIN "group_members" AS "group_members_4" ON "group_members_4"."user_id" = "users"."id" `+
		`LEFT JOIN "groups" AS "groups_3" ON "groups_3"."id" = "group_members_4"."group_id"`, sql)
}

func TestGeneratedAliasesAreUnique(t *testing.T) {
	for name, generator := range map[string]powerjoins.AliasGenerator{
		"sequence": powerjoins.SequenceAliasGenerator{},
		"uuid":     powerjoins.UUIDAliasGenerator{},
	} {
		t.Run(name, func(t *testing.T) {
			db := newBlogDB(t, &powerjoins.Config{AliasGenerator: generator})

			tx := db.Model("Category").JoinRelationshipUsingAlias("parent.parent.parent")
			require.NoError(t, tx.Error)
			require.Len(t, tx.Statement.Joins, 3)

			seen := map[string]bool{}
			for _, join := range tx.Statement.Joins {
				assert.True(t, strings.HasPrefix(join.Alias, "categories_"), join.Alias)
				assert.False(t, seen[join.Alias], "alias %s used twice", join.Alias)
				seen[join.Alias] = true
			}

			var g errgroup.Group
			aliases := make([]string, 64)
			for i := range aliases {
				i := i
				g.Go(func() error {
					aliases[i] = generator.Generate("public.posts", "posts")
					return nil
				})
			}
			require.NoError(t, g.Wait())

			unique := map[string]bool{}
			for _, alias := range aliases {
				assert.True(t, strings.HasPrefix(alias, "posts_"), alias)
				unique[alias] = true
			}
			assert.Len(t, unique, len(aliases))
		})
	}
}

func TestSelfJoinAlias(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, _ := toSQL(t, db.Model("Category").JoinRelationship("parent"))
	assert.Equal(t, `SELECT * FROM "categories" INNER JOIN "categories" ON "categories"."parent_id" = "categories"."id"`, sql)

	sql, vars := toSQL(t, db.Model("Category").JoinRelationship("parent", func(join *powerjoins.JoinClause) {
		join.Where("categories.name", "news").As("parents")
	}))
	assert.Equal(t, `SELECT * FROM "categories" INNER JOIN "categories" AS "parents" ON "categories"."parent_id" = "parents"."id" AND "categories"."name" = ?`, sql)
	assert.Equal(t, []interface{}{"news"}, vars)
}

func TestAliasRewritesConditions(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, vars := toSQL(t, db.Model("User").JoinRelationship("posts", func(join *powerjoins.JoinClause) {
		join.As("first").Where("posts.published", true).As("second")
	}))
	assert.Equal(t, `SELECT * FROM "users" INNER JOIN "posts" AS "second" ON "second"."user_id" = "users"."id" AND "second"."published" = ?`, sql)
	assert.Equal(t, []interface{}{true}, vars)
}

func TestCallbacksByRelationship(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, vars := toSQL(t, db.Model("User").JoinRelationshipWith("posts.comments", powerjoins.JoinOptions{
		Callbacks: map[string]func(*powerjoins.JoinClause){
			"posts":    func(join *powerjoins.JoinClause) { join.As("p") },
			"comments": func(join *powerjoins.JoinClause) { join.Where("comments.approved", true) },
		},
	}))
	assert.Equal(t, `SELECT * FROM "users" `+
		`INNER JOIN "posts" AS "p" ON "p"."user_id" = "users"."id" `+
		`INNER JOIN "comments" ON "comments"."post_id" = "p"."id" AND "comments"."deleted_at" IS NULL AND "comments"."approved" = ?`, sql)
	assert.Equal(t, []interface{}{true}, vars)

	sql, _ = toSQL(t, db.Model("User").JoinRelationshipWith("groups", powerjoins.JoinOptions{
		Callbacks: map[string]func(*powerjoins.JoinClause){
			"group_members": func(join *powerjoins.JoinClause) { join.As("gm") },
		},
	}))
	assert.Equal(t, `SELECT * FROM "users" INNER JOIN "group_members" AS "gm" ON "gm"."user_id" = "users"."id" INNER JOIN "groups" ON "groups"."id" = "gm"."group_id"`, sql)
}

func TestExtraConditions(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, vars := toSQL(t, db.Model("User").JoinRelationship("publishedPosts"))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` AND "posts"."published" = ?`, sql)
	assert.Equal(t, []interface{}{true}, vars)

	sql, vars = toSQL(t, db.Model("User").JoinRelationshipWith("publishedPosts", powerjoins.JoinOptions{DisableExtraConditions: true}))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)
	assert.Empty(t, vars)
}

func TestSoftDeletes(t *testing.T) {
	db := newBlogDB(t, nil)

	sql, _ := toSQL(t, db.Model("Post").JoinRelationship("comments", func(join *powerjoins.JoinClause) {
		join.WithTrashed()
	}))
	assert.Equal(t, `SELECT * FROM "posts" INNER JOIN "comments" ON "comments"."post_id" = "posts"."id"`, sql)

	sql, _ = toSQL(t, db.Model("Post").JoinRelationship("comments", func(join *powerjoins.JoinClause) {
		join.OnlyTrashed()
	}))
	assert.Equal(t, `SELECT * FROM "posts" INNER JOIN "comments" ON "comments"."post_id" = "posts"."id" AND "comments"."deleted_at" IS NOT NULL`, sql)

	sql, _ = toSQL(t, db.Model("Post").JoinRelationship("comments", func(join *powerjoins.JoinClause) {
		join.As("c").OnlyTrashed()
	}))
	assert.Equal(t, `SELECT * FROM "posts" INNER JOIN "comments" AS "c" ON "c"."post_id" = "posts"."id" AND "c"."deleted_at" IS NOT NULL`, sql)

	sql, _ = toSQL(t, db.Model("Comment").Unscoped().JoinRelationship("post"))
	assert.Equal(t, `SELECT * FROM "comments" INNER JOIN "posts" ON "comments"."post_id" = "posts"."id"`, sql)

	db.RegisterModel("Post").HasMany("allComments", "Comment").IncludeTrashed()
	sql, _ = toSQL(t, db.Model("Post").JoinRelationship("allComments"))
	assert.Equal(t, `SELECT * FROM "posts" INNER JOIN "comments" ON "comments"."post_id" = "posts"."id"`, sql)
}

func TestJoinScopes(t *testing.T) {
	db := newBlogDB(t, nil)
	db.RegisterScope("Post", "published", func(join *powerjoins.JoinClause, args ...interface{}) {
		join.Where("posts.published", true)
	})
	db.RegisterScope("Post", "minVotes", func(join *powerjoins.JoinClause, args ...interface{}) {
		join.Where("posts.votes", ">=", args[0])
	})

	sql, vars := toSQL(t, db.Model("User").JoinRelationship("posts", func(join *powerjoins.JoinClause) {
		join.Scope("published").Scope("minVotes", 10)
	}))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` AND "posts"."published" = ? AND "posts"."votes" >= ?`, sql)
	assert.Equal(t, []interface{}{true, 10}, vars)

	tx := db.Model("User").JoinRelationship("posts", func(join *powerjoins.JoinClause) {
		join.Scope("popular")
	})
	require.ErrorIs(t, tx.Error, powerjoins.ErrScopeNotFound)
	assert.Contains(t, tx.Error.Error(), "call to undefined method JoinClause.popular()")
	assert.Empty(t, tx.Statement.Joins)
}

func TestJoinRelationshipErrors(t *testing.T) {
	db := newBlogDB(t, nil)

	tx := db.Model("User").JoinRelationship("posts.likes")
	assert.ErrorIs(t, tx.Error, powerjoins.ErrRelationNotFound)
	assert.Empty(t, tx.Statement.Joins, "a failed path adds no joins")

	tx = db.Model("Image").JoinRelationship("imageable")
	assert.ErrorIs(t, tx.Error, powerjoins.ErrMorphableRequired)

	tx = db.Model("Image").JoinRelationshipWith("imageable", powerjoins.JoinOptions{Morphable: "Video"})
	assert.ErrorIs(t, tx.Error, schema.ErrModelNotFound)

	tx = db.Model("Video")
	assert.ErrorIs(t, tx.Error, powerjoins.ErrModelValueRequired)
	assert.ErrorIs(t, tx.Error, schema.ErrModelNotFound)

	_, _, err := db.JoinRelationship("posts").ToSQL()
	assert.ErrorIs(t, err, powerjoins.ErrModelValueRequired)

	_, err = powerjoins.Open(nil, nil)
	assert.ErrorIs(t, err, powerjoins.ErrInvalidDialector)
}

func TestWithContextKeepsQuery(t *testing.T) {
	db := newBlogDB(t, nil)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	tx := db.Model("User").JoinRelationship("posts").WithContext(ctx)
	assert.Equal(t, "value", tx.Statement.Context.Value(ctxKey{}))

	sql, _ := toSQL(t, tx.Where("users.active", true))
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts+` WHERE "users"."active" = ?`, sql)
}

func TestConcurrentClones(t *testing.T) {
	db := newBlogDB(t, nil)
	base := db.Model("User").JoinRelationship("posts")

	paths := []string{"posts.comments", "groups", "images", "latestPost", "postComments"}
	results := make([]string, 50)

	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			sql, _, err := base.Clone().JoinRelationshipUsingAlias(paths[i%len(paths)]).ToSQL()
			results[i] = sql
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, sql := range results {
		assert.True(t, strings.HasPrefix(sql, `SELECT * FROM "users" `+joinPosts), sql)
	}

	sql, _ := toSQL(t, base)
	assert.Equal(t, `SELECT * FROM "users" `+joinPosts, sql)
}
