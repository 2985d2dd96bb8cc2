package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/eachlabs/solace/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage solace configuration.

Subcommands:
  get [key]              Show configuration value(s)
  path                   Show config file path
  init                   Write the default config file`,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration",
	Long: `Show effective configuration values, after environment overrides.

Examples:
  solace config get                  # Show all config
  solace config get server.base_url
  solace config get logging`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return writeConfig(cmd.OutOrStdout(), cfg, jsonOut)
		}

		key := args[0]
		value := getConfigValue(cfg, key)
		if value == nil {
			return errors.Errorf("key not found: %s", key)
		}

		if jsonOut {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(value)
		}

		switch value.(type) {
		case config.ServerConfig, config.ChatConfig, config.UIConfig, config.LoggingConfig:
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(value)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
		return nil
	},
}

func writeConfig(w io.Writer, cfg *config.Config, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	return toml.NewEncoder(w).Encode(cfg)
}

func getConfigValue(cfg *config.Config, key string) interface{} {
	parts := strings.Split(key, ".")

	switch parts[0] {
	case "server":
		if len(parts) == 1 {
			return cfg.Server
		}
		switch parts[1] {
		case "base_url":
			return cfg.Server.BaseURL
		}

	case "chat":
		if len(parts) == 1 {
			return cfg.Chat
		}
		switch parts[1] {
		case "greeting":
			return cfg.Chat.Greeting
		case "error_text":
			return cfg.Chat.ErrorText
		case "confirm_prompt":
			return cfg.Chat.ConfirmPrompt
		case "clear_failed_text":
			return cfg.Chat.ClearFailedText
		}

	case "ui":
		if len(parts) == 1 {
			return cfg.UI
		}
		switch parts[1] {
		case "mode":
			return cfg.UI.Mode
		}

	case "logging":
		if len(parts) == 1 {
			return cfg.Logging
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level
		case "file":
			return cfg.Logging.File
		case "max_size_mb":
			return cfg.Logging.MaxSizeMB
		case "max_backups":
			return cfg.Logging.MaxBackups
		}
	}

	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := initConfig(path, configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("config already exists: %s (use --force to overwrite)", path)
	}
	if err := config.Default().Save(path); err != nil {
		return errors.Wrap(err, "failed to save config")
	}
	return nil
}
