package mysql

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/logger"
)

type Dialector struct{}

// New returns the MySQL dialector
func New() powerjoins.Dialector {
	return Dialector{}
}

func (Dialector) Name() string {
	return "mysql"
}

// QuoteTo quotes every part of a `schema.table.column` reference with
// backticks, backticks inside a name are doubled
func (Dialector) QuoteTo(writer clause.Writer, str string) {
	for idx, part := range strings.Split(str, ".") {
		if idx > 0 {
			writer.WriteByte('.')
		}
		writer.WriteByte('`')
		writer.WriteString(strings.ReplaceAll(part, "`", "``"))
		writer.WriteByte('`')
	}
}

func (Dialector) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `'`, vars...)
}
