package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(countriesCmd)
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "print fleet-wide capacity statistics",
	Example: "gridctl stats --registry https://explorer.grid.tf/explorer",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		return printJSON(cmd.OutOrStdout(), store.CurrentStats())
	},
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "print node counts per country",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		return printJSON(cmd.OutOrStdout(), store.CountryGroups())
	},
}
