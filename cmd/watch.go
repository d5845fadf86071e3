package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Watch a diagram for live updates from collaborators",
	Long: `Joins the diagram's update room on the websocket channel and re-renders
the diagram whenever a collaborator changes it. Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		w, err := openWorkspace(true)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := w.coord.Refresh(ctx); err != nil {
			return err
		}
		if _, ok := w.store.Get(id); !ok {
			return fmt.Errorf("unknown diagram %q", id)
		}
		w.coord.Select(id)
		if err := w.coord.Watch(id); err != nil {
			return fmt.Errorf("joining update room: %w", err)
		}

		render := func() {
			if d, ok := w.store.Get(id); ok {
				printDiagram(d, true)
			} else {
				fmt.Println("Diagram was deleted.")
			}
		}
		render()

		changed := make(chan struct{}, 1)
		unsubscribe := w.store.Subscribe(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		fmt.Fprintln(os.Stderr, "Watching for updates (Ctrl-C to stop)...")
		for {
			select {
			case <-changed:
				render()
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
