package schema

import (
	"testing"
)

func TestToDBName(t *testing.T) {
	var maps = map[string]string{
		"":                          "",
		"x":                         "x",
		"X":                         "x",
		"userRestrictions":          "user_restrictions",
		"ThisIsATest":               "this_is_a_test",
		"PFAndESI":                  "pf_and_esi",
		"AbcAndJkl":                 "abc_and_jkl",
		"EmployeeID":                "employee_id",
		"SKU_ID":                    "sku_id",
		"FieldX":                    "field_x",
		"HTTPAndSMTP":               "http_and_smtp",
		"HTTPServerHandlerForURLID": "http_server_handler_for_url_id",
		"UUID":                      "uuid",
		"HTTPURL":                   "http_url",
		"HTTP_URL":                  "http_url",
		"SHA256Hash":                "sha256_hash",
		"SHA256HASH":                "sha256_hash",
		"BlogPost":                  "blog_post",
	}

	for key, value := range maps {
		if toDBName(key) != value {
			t.Errorf("%v toName should equal %v, but got %v", key, value, toDBName(key))
		}
	}
}

func TestNamingStrategy(t *testing.T) {
	ns := NamingStrategy{TablePrefix: "public."}

	if table := ns.TableName("BlogPost"); table != "public.blog_posts" {
		t.Errorf("invalid table name, got %v", table)
	}

	if fk := ns.ForeignKey("Category"); fk != "category_id" {
		t.Errorf("invalid foreign key, got %v", fk)
	}

	if fk := ns.ForeignKey("users"); fk != "user_id" {
		t.Errorf("plural model names should be singularized, got %v", fk)
	}

	if pivot := ns.JoinTableName("User", "Group"); pivot != "public.group_user" {
		t.Errorf("pivot tables should be alphabetical, got %v", pivot)
	}

	if typeColumn, idColumn := ns.MorphColumns("imageable"); typeColumn != "imageable_type" || idColumn != "imageable_id" {
		t.Errorf("invalid morph columns, got %v, %v", typeColumn, idColumn)
	}

	if table := ns.MorphTableName("taggable"); table != "public.taggables" {
		t.Errorf("invalid morph table name, got %v", table)
	}

	singular := NamingStrategy{SingularTable: true}
	if table := singular.TableName("Post"); table != "post" {
		t.Errorf("singular table name expected, got %v", table)
	}
}
