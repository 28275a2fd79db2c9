package main

import (
	"github.com/spf13/cobra"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/clause"
)

var (
	orderDirection string
	orderAggregate string
	orderLeft      bool
)

var orderCmd = &cobra.Command{
	Use:   "order <model> <sort>",
	Short: "Order by a column of a related model",
	Example: `  # Order posts by their category title
  powerjoins order Post category.title --direction desc

  # Order users by how many posts they have
  powerjoins order User posts.id --aggregate count --left`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := openDB(cmd, args[0])
		if err != nil {
			return err
		}

		opts := powerjoins.OrderOptions{Direction: orderDirection, Aggregation: orderAggregate}
		if orderLeft {
			opts.JoinType = clause.LeftJoin
		}
		return printQuery(cmd.OutOrStdout(), tx.OrderByPowerJoinsWith(args[1], opts))
	},
}

func init() {
	flags := orderCmd.Flags()
	flags.StringVar(&orderDirection, "direction", "asc", "asc or desc")
	flags.StringVar(&orderAggregate, "aggregate", "", "count, sum, avg, min or max")
	flags.BoolVar(&orderLeft, "left", false, "left join the relationships")
}
