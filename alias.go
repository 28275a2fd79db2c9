package powerjoins

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// AliasGenerator names a table joined through path. Every call must return
// a new name.
type AliasGenerator interface {
	Generate(table, path string) string
}

var aliasSequence atomic.Uint64

// SequenceAliasGenerator `<table>_<hash of path>_<n>`, n is a process wide counter
type SequenceAliasGenerator struct{}

func (SequenceAliasGenerator) Generate(table, path string) string {
	return aliasPrefix(table) + "_" +
		strconv.FormatUint(xxhash.Sum64String(path), 36) + "_" +
		strconv.FormatUint(aliasSequence.Add(1), 10)
}

// UUIDAliasGenerator `<table>_<random uuid>`
type UUIDAliasGenerator struct{}

func (UUIDAliasGenerator) Generate(table, _ string) string {
	return aliasPrefix(table) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func aliasPrefix(table string) string {
	if idx := strings.LastIndexByte(table, '.'); idx >= 0 {
		return table[idx+1:]
	}
	return table
}

// Aliases names a relationship's tables are joined with, Pivot is only set
// for relationships joined through a pivot or through table
type Aliases struct {
	Far   string
	Pivot string
}

// joinSession tracks the names of the tables joined by one scope call so
// later segments of a path attach to the right alias
type joinSession struct {
	stmt      *Statement
	generator AliasGenerator
	names     map[string]Aliases
}

func newJoinSession(stmt *Statement) *joinSession {
	generator := stmt.DB.AliasGenerator
	if generator == nil {
		generator = SequenceAliasGenerator{}
	}
	return &joinSession{stmt: stmt, generator: generator, names: map[string]Aliases{}}
}

// current returns the alias or table the model reached through path was
// joined with, the root table for the empty path
func (s *joinSession) current(path string) string {
	if path == "" {
		return s.stmt.Table
	}
	return s.names[path].Far
}

func (s *joinSession) remember(path string, names Aliases) {
	s.names[path] = names
}

// generateAlias fills in generated names for the tables aliases leaves empty
func (s *joinSession) generateAlias(aliases Aliases, farTable, pivotTable, path string) Aliases {
	if aliases.Far == "" {
		aliases.Far = s.generator.Generate(farTable, path)
	}
	if pivotTable != "" && aliases.Pivot == "" {
		aliases.Pivot = s.generator.Generate(pivotTable, path+"#pivot")
	}
	return aliases
}

func (s *joinSession) clear() {
	for path := range s.names {
		delete(s.names, path)
	}
}
