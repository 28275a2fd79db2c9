package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/dialects/mysql"
	"github.com/kirschbaum-development/powerjoins/dialects/postgres"
	"github.com/kirschbaum-development/powerjoins/dialects/sqlite"
	"github.com/kirschbaum-development/powerjoins/logger"
	"github.com/kirschbaum-development/powerjoins/schema"
)

// Dialector returns the dialector named by the config
func (c *Config) Dialector() (powerjoins.Dialector, error) {
	switch c.Dialect {
	case "mysql", "":
		return mysql.New(), nil
	case "postgres", "postgresql", "pgx":
		return postgres.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", powerjoins.ErrInvalidDialector, c.Dialect)
}

// AliasGenerator returns the configured alias generator
func (c *Config) AliasGenerator() (powerjoins.AliasGenerator, error) {
	switch c.Aliases.Generator {
	case "sequence", "":
		return powerjoins.SequenceAliasGenerator{}, nil
	case "uuid":
		return powerjoins.UUIDAliasGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown alias generator %q", c.Aliases.Generator)
}

// Logger builds a zap backed logger, console or json encoded
func (c *Config) Logger() (logger.Interface, error) {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	switch c.Log.Format {
	case "json":
		zapConfig = zap.NewProductionConfig()
	case "console", "":
		zapConfig = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(logger.ZapLevel(level))
	zapConfig.OutputPaths = []string{"stderr"}

	return logger.NewZapLoggerWithConfig(logger.Config{LogLevel: level}, zapConfig)
}

// Open returns a DB with the configured dialect and the models of the
// definitions file registered
func (c *Config) Open(log logger.Interface) (*powerjoins.DB, error) {
	dialector, err := c.Dialector()
	if err != nil {
		return nil, ConfigError("selecting dialect", err)
	}

	generator, err := c.AliasGenerator()
	if err != nil {
		return nil, ConfigError("selecting alias generator", err)
	}

	naming := schema.NamingStrategy{TablePrefix: c.Naming.TablePrefix, SingularTable: c.Naming.SingularTable}
	db, err := powerjoins.Open(dialector, &powerjoins.Config{
		NamingStrategy: naming,
		Logger:         log,
		AliasGenerator: generator,
	})
	if err != nil {
		return nil, ConfigError("opening", err)
	}

	defs, err := schema.LoadDefinitions(c.Models)
	if err != nil {
		return nil, DefinitionError("loading model definitions", err)
	}

	if err := defs.Register(db.Schemas); err != nil {
		return nil, DefinitionError("registering model definitions", err)
	}
	return db, nil
}
