package powerjoins

import (
	"context"
	"fmt"

	"github.com/kirschbaum-development/powerjoins/clause"
	"github.com/kirschbaum-development/powerjoins/logger"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// Config powerjoins config
type Config struct {
	// NamingStrategy tables, columns naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// Dialector database dialector
	Dialector
	// AliasGenerator names tables joined with aliases, SequenceAliasGenerator by default
	AliasGenerator AliasGenerator
	// Observer is told about applied and skipped joins
	Observer Observer
	// Schemas models and relationships queries are built for
	Schemas *schema.Registry

	scopes *scopeRegistry
}

// DB powerjoins DB definition
type DB struct {
	*Config
	Error     error
	Statement *Statement
	clone     int
}

// Session session config when create session with Session() method
type Session struct {
	NewDB   bool
	Context context.Context
	Logger  logger.Interface
}

// Open initialize db session based on dialector
func Open(dialector Dialector, config *Config) (db *DB, err error) {
	if config == nil {
		config = &Config{}
	}

	if dialector != nil {
		config.Dialector = dialector
	}

	if config.Dialector == nil {
		return nil, ErrInvalidDialector
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if config.AliasGenerator == nil {
		config.AliasGenerator = SequenceAliasGenerator{}
	}

	if config.Observer == nil {
		config.Observer = nopObserver{}
	}

	if config.Schemas == nil {
		config.Schemas = schema.NewRegistry(config.NamingStrategy)
	}

	if config.scopes == nil {
		config.scopes = newScopeRegistry()
	}

	db = &DB{Config: config, clone: 1}
	return
}

// Session create new db session. Unless NewDB is set the session starts from a
// copy of the current statement, and every chain started from it works on its
// own copy again.
func (db *DB) Session(config *Session) *DB {
	var (
		txConfig = *db.Config
		tx       = &DB{
			Config:    &txConfig,
			Statement: db.Statement,
			Error:     db.Error,
			clone:     1,
		}
	)

	if config.NewDB || tx.Statement == nil {
		tx.Statement = newStatement(tx)
		tx.Error = nil
	} else {
		// copied now, so later changes to db.Statement stay out of the session
		tx.Statement = db.Statement.clone()
		tx.Statement.DB = tx
		tx.clone = 3
	}

	if config.Context != nil {
		tx.Statement.Context = config.Context
	}

	if config.Logger != nil {
		tx.Config.Logger = config.Logger
	}

	return tx
}

// Clone returns a copy of the current query. Joins applied to the copy, or
// to the original after this point, are not seen by the other.
func (db *DB) Clone() *DB {
	return db.Session(&Session{})
}

// WithContext change current instance db's context to ctx
func (db *DB) WithContext(ctx context.Context) *DB {
	return db.Session(&Session{Context: ctx})
}

// Debug start debug mode
func (db *DB) Debug() (tx *DB) {
	return db.Session(&Session{
		Logger: db.Logger.LogMode(logger.Info),
	})
}

// RegisterModel returns the schema of the named model, registering it with
// default table and keys when missing
func (db *DB) RegisterModel(name string) *schema.Schema {
	return db.Schemas.Model(name)
}

// AddError add error to db
func (db *DB) AddError(err error) error {
	if db.Error == nil {
		db.Error = err
	} else if err != nil {
		db.Error = fmt.Errorf("%v; %w", db.Error, err)
	}
	return db.Error
}

func (db *DB) getInstance() *DB {
	if db.clone > 0 {
		tx := &DB{Config: db.Config, Error: db.Error}

		if db.clone == 3 && db.Statement != nil {
			tx.Statement = db.Statement.clone()
			tx.Statement.DB = tx
		} else {
			tx.Statement = newStatement(tx)
			if db.Statement != nil {
				tx.Statement.Context = db.Statement.Context
			}
		}

		return tx
	}

	return db
}

// Expr returns a raw SQL expression
func Expr(expr string, args ...interface{}) clause.Expr {
	return clause.Expr{SQL: expr, Vars: args}
}
