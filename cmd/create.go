package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/diagram"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new diagram",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		var created diagram.Diagram
		err = withSpinner("Creating diagram", func() error {
			var err error
			created, err = w.coord.Create(context.Background(), name)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created %q (id %s)\n", created.Name, created.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
