// Package cli provides the configuration shared by the powerjoins commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// Config represents the powerjoins configuration from powerjoins.yaml.
type Config struct {
	// Dialect is one of mysql, postgres or sqlite
	Dialect string `mapstructure:"dialect" json:"dialect"`
	// Models is the path of the model definitions file
	Models string `mapstructure:"models" json:"models"`
	// Explain prints queries with their vars inlined
	Explain bool `mapstructure:"explain" json:"explain"`

	Naming  NamingConfig  `mapstructure:"naming" json:"naming"`
	Aliases AliasesConfig `mapstructure:"aliases" json:"aliases"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
}

// NamingConfig holds the table naming settings.
type NamingConfig struct {
	TablePrefix   string `mapstructure:"table_prefix" json:"table_prefix"`
	SingularTable bool   `mapstructure:"singular_table" json:"singular_table"`
}

// AliasesConfig selects how generated table aliases are named.
type AliasesConfig struct {
	// Generator is sequence or uuid
	Generator string `mapstructure:"generator" json:"generator"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("POWERJOINS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	// a relative models path in the config file is resolved against the file
	if _, fromEnv := os.LookupEnv("POWERJOINS_MODELS"); v.InConfig("models") && !fromEnv && !filepath.IsAbs(cfg.Models) {
		cfg.Models = filepath.Join(filepath.Dir(configPath), cfg.Models)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dialect", "mysql")
	v.SetDefault("models", "models.yaml")
	v.SetDefault("explain", false)

	v.SetDefault("naming.table_prefix", "")
	v.SetDefault("naming.singular_table", false)

	v.SetDefault("aliases.generator", "sequence")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for powerjoins.yaml or powerjoins.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"powerjoins.yaml", "powerjoins.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
