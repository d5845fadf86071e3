package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/lgmendez/diasync/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing diagram workspace tools for AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "diasync MCP server started on stdio (server=%s)\n", w.cfg.ServerURL)

		srv := mcpserver.NewServer(w.coord, w.store)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
