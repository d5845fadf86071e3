package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "diasync",
	Short: "Collaborative diagram synchronization client",
	Long: `Diasync keeps a local mirror of your collaborative diagrams in sync
with the diagram server. It talks REST for user-initiated operations,
listens on a websocket for live updates from collaborators, and exposes
the workspace to AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".diasync.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
