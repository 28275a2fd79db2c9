package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/internal/cli"
)

var (
	// set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	cfgFile string
	explain bool
)

var rootCmd = &cobra.Command{
	Use:   "powerjoins",
	Short: "Build SQL joins from model relationships",
	Long: `powerjoins - Build SQL joins from model relationships

Reads model and relationship definitions and prints the SELECT statement the
join, order and has scopes build for them, without touching a database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		if cmd.Flags().Changed("explain") {
			cfg.Explain = explain
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover powerjoins.yaml)")
	rootCmd.PersistentFlags().BoolVar(&explain, "explain", false, "print the query with its vars inlined")

	rootCmd.AddCommand(joinCmd, orderCmd, hasCmd, configCmd)
}

// openDB opens the configured DB and starts a query from model
func openDB(cmd *cobra.Command, model string) (*powerjoins.DB, error) {
	log, err := cfg.Logger()
	if err != nil {
		return nil, cli.ConfigError("building logger", err)
	}

	db, err := cfg.Open(log)
	if err != nil {
		return nil, err
	}
	return db.WithContext(cmd.Context()).Model(model), nil
}

// printQuery writes the query, followed by its vars unless they are inlined
func printQuery(w io.Writer, tx *powerjoins.DB) error {
	if cfg.Explain {
		sql, err := tx.Explain()
		if err != nil {
			return cli.QueryError("building query", err)
		}
		_, err = fmt.Fprintln(w, sql)
		return err
	}

	sql, vars, err := tx.ToSQL()
	if err != nil {
		return cli.QueryError("building query", err)
	}

	if _, err := fmt.Fprintln(w, sql); err != nil {
		return err
	}
	for idx, v := range vars {
		if _, err := fmt.Fprintf(w, "-- $%d = %#v\n", idx+1, v); err != nil {
			return err
		}
	}
	return nil
}
