package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a diagram you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if !deleteYes {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("Delete diagram %s", id),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		err = withSpinner("Deleting diagram", func() error {
			return w.coord.Remove(context.Background(), id)
		})
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
