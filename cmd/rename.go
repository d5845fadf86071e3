package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/diagram"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a diagram",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		name := strings.Join(args[1:], " ")

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		var renamed diagram.Diagram
		err = withSpinner("Renaming diagram", func() error {
			var err error
			renamed, err = w.coord.Update(context.Background(), id, name, nil)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("Renamed %s to %q\n", renamed.ID, renamed.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
