package commands

import (
	"fmt"

	"github.com/eachlabs/solace/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "solace",
	Short: "solace - a supportive chat client",
	Long: `solace is a terminal client for a supportive chat assistant.

Commands:
  solace chat            Start a conversation (default)
  solace health          Check the assistant server
  solace config          Manage configuration`,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.solace/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	addChatFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(ver string) error {
	version = ver
	return rootCmd.Execute()
}

var version string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "solace %s\n", version)
	},
}

// loadConfig honours --config before the default location.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPath()
}
