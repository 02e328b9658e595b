// Package cmd implements the command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/contactscout/cmd/discover"
	"github.com/jonesrussell/contactscout/cmd/httpd"
	"github.com/jonesrussell/contactscout/cmd/scheduler"
	"github.com/jonesrussell/contactscout/internal/config"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "contactscout",
	Short: "Discover and resolve organization contacts",
	Long: `ContactScout crawls organization websites, extracts staff contact
candidates, scores them for relevance, and resolves them into a canonical
contact store in PostgreSQL.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")

	rootCmd.AddCommand(discover.Command())
	rootCmd.AddCommand(scheduler.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(versionCmd)
}

// initConfig wires configuration sources before any command runs.
func initConfig() {
	if err := config.InitializeViper(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("contactscout version 1.0.0")
	},
}
