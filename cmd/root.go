package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "attendant",
	Short: "attendant is a multi-platform conversational assistant",
	Long: "attendant orchestrates a conversational assistant across chat" +
		" platforms: one messaging pipeline, pluggable extensions, and a" +
		" command bus tying the platform adapters together.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default ~/.attendant/config.yaml)")
}
