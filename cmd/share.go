package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/diagram"
)

var shareCmd = &cobra.Command{
	Use:   "share <id> <email> [email...]",
	Short: "Share a diagram with other users by email",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		emails := args[1:]

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := context.Background()

		// Sharing keeps the current name, so the collection must be
		// loaded first to know it.
		if err := w.coord.Refresh(ctx); err != nil {
			return err
		}
		d, ok := w.store.Get(id)
		if !ok {
			return fmt.Errorf("unknown diagram %q", id)
		}

		var updated diagram.Diagram
		err = withSpinner("Sharing diagram", func() error {
			var err error
			updated, err = w.coord.Update(ctx, id, d.Name, emails)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("Shared %q with %s (%d participants)\n",
			updated.Name, strings.Join(emails, ", "), len(updated.SharedParticipants))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
}
