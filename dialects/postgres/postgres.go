package postgres

import (
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/logger"
)

var numericPlaceholder = regexp.MustCompile(`\$(\d+)`)

type Dialector struct{}

// New returns the PostgreSQL dialector
func New() powerjoins.Dialector {
	return Dialector{}
}

func (Dialector) Name() string {
	return "postgres"
}

// QuoteTo quotes `schema.table.column` references part by part
func (Dialector) QuoteTo(writer clause.Writer, str string) {
	writer.WriteString(pgx.Identifier(strings.Split(str, ".")).Sanitize())
}

func (Dialector) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (Dialector) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, numericPlaceholder, `'`, vars...)
}
