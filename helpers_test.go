package powerjoins_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/dialects/sqlite"
	"github.com/kirschbaum-development/powerjoins/logger"
)

// countingAliases names aliases `<table>_<n>` so generated SQL can be asserted
type countingAliases struct {
	mu sync.Mutex
	n  int
}

func (g *countingAliases) Generate(table, _ string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s_%d", table, g.n)
}

// newBlogDB registers a small blog:
//
//	User    has many posts, belongs to many groups, has one latest post,
//	        has many comments through posts, morph many images
//	Post    belongs to user and category, has many comments, morph to many tags
//	Comment soft deleted, belongs to post
//	Category belongs to a parent category
//	Image   morph to imageable
//	Tag     morphed by many posts
func newBlogDB(t *testing.T, config *powerjoins.Config) *powerjoins.DB {
	t.Helper()

	if config == nil {
		config = &powerjoins.Config{}
	}
	if config.Logger == nil {
		config.Logger = logger.Discard
	}

	db, err := powerjoins.Open(sqlite.New(), config)
	require.NoError(t, err)

	user := db.RegisterModel("User")
	user.HasMany("posts", "Post")
	user.HasMany("publishedPosts", "Post").Where("published", true).Where("user_id", 5).WhereIn("status", "draft", "live")
	user.BelongsToMany("groups", "Group").WithPivot("group_members", "user_id", "group_id")
	user.HasOne("latestPost", "Post").LatestOfMany("created_at")
	user.HasManyThrough("postComments", "Comment", "Post")
	user.MorphMany("images", "Image", "imageable")

	post := db.RegisterModel("Post")
	post.BelongsTo("user", "User")
	post.BelongsTo("category", "Category")
	post.HasMany("comments", "Comment")
	post.MorphToMany("tags", "Tag", "taggable")

	db.RegisterModel("Comment").SoftDeletes().BelongsTo("post", "Post")
	db.RegisterModel("Category").BelongsTo("parent", "Category")
	db.RegisterModel("Group")
	db.RegisterModel("Image").MorphTo("imageable")
	db.RegisterModel("Tag").MorphedByMany("posts", "Post", "taggable")

	return db
}

func toSQL(t *testing.T, tx *powerjoins.DB) (string, []interface{}) {
	t.Helper()

	sql, vars, err := tx.ToSQL()
	require.NoError(t, err)
	return sql, vars
}
