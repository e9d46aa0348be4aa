package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/source/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available lead sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range sources.NewRegistry().Available() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
