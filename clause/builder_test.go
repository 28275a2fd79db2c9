package clause_test

import (
	"fmt"
	"strings"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// dummyBuilder renders expressions with MySQL style quoting
type dummyBuilder struct {
	strings.Builder
	Table string
	Vars  []interface{}
}

func newBuilder() *dummyBuilder {
	return &dummyBuilder{Table: "users"}
}

func (b *dummyBuilder) quoteTo(name string) {
	if name == clause.CurrentTable {
		name = b.Table
	}

	for idx, part := range strings.Split(name, ".") {
		if idx > 0 {
			b.WriteByte('.')
		}
		b.WriteByte('`')
		b.WriteString(part)
		b.WriteByte('`')
	}
}

func (b *dummyBuilder) WriteQuoted(field interface{}) {
	switch v := field.(type) {
	case clause.Table:
		if v.Raw {
			b.WriteString(v.Name)
		} else {
			b.quoteTo(v.Name)
		}
		if v.Alias != "" {
			b.WriteString(" AS ")
			b.quoteTo(v.Alias)
		}
	case clause.Column:
		if v.Raw {
			b.WriteString(v.Name)
		} else {
			if v.Table != "" {
				b.quoteTo(v.Table)
				b.WriteByte('.')
			}
			if v.Name == clause.PrimaryKey {
				v.Name = "id"
			}
			b.quoteTo(v.Name)
		}
		if v.Alias != "" {
			b.WriteString(" AS ")
			b.quoteTo(v.Alias)
		}
	case string:
		b.quoteTo(v)
	default:
		b.WriteString(fmt.Sprint(field))
	}
}

func (b *dummyBuilder) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}

		switch v := v.(type) {
		case clause.Column, clause.Table:
			b.WriteQuoted(v)
		case clause.Expression:
			v.Build(b)
		case []interface{}:
			if len(v) > 0 {
				writer.WriteByte('(')
				b.AddVar(writer, v...)
				writer.WriteByte(')')
			} else {
				writer.WriteString("(NULL)")
			}
		default:
			b.Vars = append(b.Vars, v)
			writer.WriteByte('?')
		}
	}
}
