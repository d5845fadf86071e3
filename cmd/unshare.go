package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/diagram"
)

var unshareCmd = &cobra.Command{
	Use:   "unshare <id> <user-id>",
	Short: "Remove a participant from a diagram",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, userID := args[0], args[1]

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		var updated diagram.Diagram
		err = withSpinner("Removing participant", func() error {
			var err error
			updated, err = w.coord.RemoveParticipant(context.Background(), id, userID)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("Removed %s from %q (%d participants left)\n",
			userID, updated.Name, len(updated.SharedParticipants))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unshareCmd)
}
