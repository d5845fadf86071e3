package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your diagrams",
	Long:  `Fetches all diagrams you own or are shared into and prints them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		err = withSpinner("Fetching diagrams", func() error {
			return w.coord.Refresh(context.Background())
		})
		if err != nil {
			return err
		}

		diagrams := w.store.List()
		if len(diagrams) == 0 {
			fmt.Println("No diagrams yet. Create one with `diasync create <name>`.")
			return nil
		}
		sel, _ := w.store.Selected()
		for _, d := range diagrams {
			printDiagram(d, d.ID == sel.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
