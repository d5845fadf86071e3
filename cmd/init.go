package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize diasync configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the server endpoints and your identity, and writes a .diasync.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Configuration written to %s\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
