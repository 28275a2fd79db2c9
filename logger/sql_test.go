package logger_test

import (
	"regexp"
	"testing"

	"github.com/jinzhu/now"

	"github.com/kirschbaum-development/powerjoins/logger"
)

func TestExplainSQL(t *testing.T) {
	type status string
	var (
		tt        = now.MustParse("2020-02-23 11:10:10")
		published = status("published")
	)

	results := []struct {
		SQL           string
		NumericRegexp *regexp.Regexp
		Vars          []interface{}
		Result        string
	}{
		{
			SQL:    "SELECT `users`.* FROM `users` INNER JOIN `posts` ON `posts`.`user_id` = `users`.`id` AND `posts`.`status` = ? AND `posts`.`votes` > ? AND `posts`.`deleted_at` IS NULL",
			Vars:   []interface{}{published, 10},
			Result: "SELECT `users`.* FROM `users` INNER JOIN `posts` ON `posts`.`user_id` = `users`.`id` AND `posts`.`status` = \"published\" AND `posts`.`votes` > 10 AND `posts`.`deleted_at` IS NULL",
		},
		{
			SQL:    "SELECT * FROM `posts` WHERE `title` = ? AND `rating` >= ? AND `pinned` = ? AND `published_at` < ? AND `archived_at` = ?",
			Vars:   []interface{}{"what \"?\"", 4.5, true, tt, nil},
			Result: "SELECT * FROM `posts` WHERE `title` = \"what \\\"?\\\"\" AND `rating` >= 4.500000 AND `pinned` = true AND `published_at` < \"2020-02-23 11:10:10\" AND `archived_at` = NULL",
		},
		{
			SQL:           `SELECT "users".* FROM "users" GROUP BY "users"."id" HAVING COUNT("posts"."id") >= $1 AND "users"."name" <> $2`,
			NumericRegexp: regexp.MustCompile(`\$(\d+)`),
			Vars:          []interface{}{3, "guest"},
			Result:        `SELECT "users".* FROM "users" GROUP BY "users"."id" HAVING COUNT("posts"."id") >= 3 AND "users"."name" <> "guest"`,
		},
	}

	for idx, r := range results {
		if result := logger.ExplainSQL(r.SQL, r.NumericRegexp, `"`, r.Vars...); result != r.Result {
			t.Errorf("Explain SQL #%v expects %v, but got %v", idx, r.Result, result)
		}
	}
}
