package main

import (
	"fmt"

	"github.com/narvanalabs/grid-explorer/internal/filter"
	"github.com/narvanalabs/grid-explorer/internal/models"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(nodesCmd)

	nodesCmd.Flags().StringP("farm", "f", filter.AllFarms, "Farm id to list, or All")
	for _, kind := range models.ResourceKinds() {
		nodesCmd.Flags().String(string(kind), "", fmt.Sprintf("Inclusive %s bounds as min,max", kind))
	}
	nodesCmd.Flags().Bool("hide-down", false, "Drop nodes that are down")
}

var nodesCmd = &cobra.Command{
	Use:     "nodes",
	Short:   "list nodes matching a farm and resource selection",
	Example: "gridctl nodes --farm 1 --cru 0,16 --hide-down",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}

		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		views, err := store.CurrentViews(sel)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), views)
	},
}

func selectionFromFlags(cmd *cobra.Command) (filter.Selection, error) {
	sel, err := filter.ParseSelection(func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	})
	if err != nil {
		return filter.Selection{}, fmt.Errorf("--%w", err)
	}
	sel.HideDown, _ = cmd.Flags().GetBool("hide-down")

	return sel, sel.Validate()
}
