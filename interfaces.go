package powerjoins

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/kirschbaum-development/powerjoins/clause"
)

// Dialector SQL dialect used to render queries
type Dialector interface {
	Name() string
	QuoteTo(clause.Writer, string)
	PlaceholderFormat() sq.PlaceholderFormat
	Explain(sql string, vars ...interface{}) string
}

// Observer is notified about every join the scopes apply or skip. kind is
// the relationship type, joinType the SQL join type.
type Observer interface {
	JoinApplied(kind, joinType string)
	JoinSkipped(kind string)
	ScopeError(scope string)
}

type nopObserver struct{}

func (nopObserver) JoinApplied(string, string) {}
func (nopObserver) JoinSkipped(string)         {}
func (nopObserver) ScopeError(string)          {}
