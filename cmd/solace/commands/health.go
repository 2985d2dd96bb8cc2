package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/eachlabs/solace/internal/api"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the assistant server",
	Long: `Query GET /api/health on the assistant server.

Examples:
  solace health
  solace health --json`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 10*time.Second, "request timeout")
	healthCmd.Flags().StringVar(&chatBaseURL, "base-url", "", "assistant server base URL")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	baseURL := cfg.Server.BaseURL
	if chatBaseURL != "" {
		baseURL = chatBaseURL
	}

	client, err := api.NewClient(api.Config{BaseURL: baseURL})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
	defer cancel()

	return printHealth(ctx, client, cmd.OutOrStdout(), jsonOut)
}

func printHealth(ctx context.Context, client *api.Client, w io.Writer, asJSON bool) error {
	h, err := client.Health(ctx)
	if err != nil {
		return errors.Wrapf(err, "health check against %s failed", client.BaseURL())
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	}

	fmt.Fprintf(w, "Server:       %s\n", client.BaseURL())
	fmt.Fprintf(w, "Status:       %s\n", h.Status)
	fmt.Fprintf(w, "Model loaded: %v\n", h.ModelLoaded)
	return nil
}
