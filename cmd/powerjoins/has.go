package main

import (
	"github.com/spf13/cobra"

	"github.com/kirschbaum-development/powerjoins"
)

var (
	hasOperator   string
	hasCount      int
	hasDoesntHave bool
)

var hasCmd = &cobra.Command{
	Use:   "has <model> <relation>",
	Short: "Filter by the number of related rows",
	Example: `  # Users with at least three posts
  powerjoins has User posts --operator ">=" --count 3

  # Users without posts
  powerjoins has User posts --doesnt-have`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := openDB(cmd, args[0])
		if err != nil {
			return err
		}

		opts := powerjoins.HasOptions{Operator: hasOperator, Count: hasCount}
		if hasDoesntHave {
			opts = powerjoins.HasOptions{Operator: "<", Count: 1}
		}
		return printQuery(cmd.OutOrStdout(), tx.PowerJoinHasWith(args[1], opts))
	},
}

func init() {
	flags := hasCmd.Flags()
	flags.StringVar(&hasOperator, "operator", ">=", "comparison operator")
	flags.IntVar(&hasCount, "count", 1, "number of related rows")
	flags.BoolVar(&hasDoesntHave, "doesnt-have", false, "keep rows without related rows")
	hasCmd.MarkFlagsMutuallyExclusive("doesnt-have", "operator")
	hasCmd.MarkFlagsMutuallyExclusive("doesnt-have", "count")
}
