package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirschbaum-development/powerjoins"
	"github.com/kirschbaum-development/powerjoins/clause"
)

var (
	joinType              string
	joinAlias             bool
	joinNoExtraConditions bool
	joinMorphable         string
)

var joinCmd = &cobra.Command{
	Use:   "join <model> <path>",
	Short: "Join the relationships of a dotted path",
	Example: `  # Join posts and their comments
  powerjoins join User posts.comments

  # Left join with generated aliases
  powerjoins join User posts --type left --alias`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseJoinType(joinType)
		if err != nil {
			return err
		}

		tx, err := openDB(cmd, args[0])
		if err != nil {
			return err
		}

		tx = tx.JoinRelationshipWith(args[1], powerjoins.JoinOptions{
			Type:                   typ,
			UseAlias:               joinAlias,
			DisableExtraConditions: joinNoExtraConditions,
			Morphable:              joinMorphable,
		})
		return printQuery(cmd.OutOrStdout(), tx)
	},
}

func parseJoinType(name string) (clause.JoinType, error) {
	switch strings.ToLower(name) {
	case "inner", "":
		return clause.InnerJoin, nil
	case "left":
		return clause.LeftJoin, nil
	case "right":
		return clause.RightJoin, nil
	}
	return "", fmt.Errorf("unknown join type %q, use inner, left or right", name)
}

func init() {
	flags := joinCmd.Flags()
	flags.StringVar(&joinType, "type", "inner", "join type: inner, left or right")
	flags.BoolVar(&joinAlias, "alias", false, "join every table under a generated alias")
	flags.BoolVar(&joinNoExtraConditions, "no-extra-conditions", false, "skip soft delete checks and relationship conditions")
	flags.StringVar(&joinMorphable, "morphable", "", "model joined by morph_to relationships")
}
