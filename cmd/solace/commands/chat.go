package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eachlabs/solace/internal/api"
	"github.com/eachlabs/solace/internal/chat"
	"github.com/eachlabs/solace/internal/config"
	"github.com/eachlabs/solace/internal/logging"
	"github.com/eachlabs/solace/internal/session"
	"github.com/eachlabs/solace/internal/terminal"
	"github.com/eachlabs/solace/internal/transcript"
	"github.com/eachlabs/solace/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	chatSimple  bool
	chatBaseURL string
	chatCheck   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation",
	Long: `Start an interactive chat session with the assistant server.

Examples:
  solace chat
  solace chat --base-url http://localhost:5000
  solace chat --simple   # Use line mode (no TUI)
  solace chat --check    # Fail fast if the server is down`,
	RunE: runChat,
}

func init() {
	addChatFlags(chatCmd)
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&chatSimple, "simple", false, "use line mode (no TUI)")
	cmd.Flags().StringVar(&chatBaseURL, "base-url", "", "assistant server base URL")
	cmd.Flags().BoolVar(&chatCheck, "check", false, "check server health before starting")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if chatBaseURL != "" {
		cfg.Server.BaseURL = chatBaseURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := config.EnsureDirs(); err != nil {
		return errors.Wrap(err, "failed to create directories")
	}

	logger, closer, err := logging.Setup(cfg.Logging, verbose)
	if err != nil {
		return errors.Wrap(err, "failed to set up logging")
	}
	defer closer.Close()

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.Server.BaseURL,
		Logger:  &logger,
	})
	if err != nil {
		return err
	}

	// Handle signals
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if chatCheck {
		checkCtx, checkCancel := context.WithTimeout(ctx, 10*time.Second)
		h, err := client.Health(checkCtx)
		checkCancel()
		if err != nil {
			return errors.Wrapf(err, "server %s is not reachable", client.BaseURL())
		}
		if !h.ModelLoaded {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: server %s reports no model loaded\n", client.BaseURL())
		}
	}

	id := session.New()
	logger.Info().
		Str("session_id", id.String()).
		Str("base_url", client.BaseURL()).
		Msg("chat: session started")

	log := transcript.NewLog(cfg.Chat.Greeting)
	opts := chat.Options{
		ErrorText:       cfg.Chat.ErrorText,
		ConfirmPrompt:   cfg.Chat.ConfirmPrompt,
		ClearFailedText: cfg.Chat.ClearFailedText,
		Logger:          &logger,
	}

	tty := isTerminal(os.Stdin) && isTerminal(os.Stdout)

	if resolveMode(cfg.UI.Mode, chatSimple, tty) == config.ModeSimple {
		term := terminal.New(log, terminal.Options{TTY: tty, Logger: &logger})
		c := chat.NewClient(id, client, term.Renderer(), term, opts)
		return term.Run(ctx, c)
	}

	surface := tui.NewSurface()
	c := chat.NewClient(id, client, log, surface, opts)
	model := tui.NewChatModel(c, log, surface, tui.Options{Subtitle: client.BaseURL()})
	return tui.Run(ctx, model)
}

// resolveMode picks the chat surface. --simple wins; auto falls back to line
// mode when stdio is not a terminal.
func resolveMode(mode string, simple, tty bool) string {
	if simple {
		return config.ModeSimple
	}
	if mode == config.ModeAuto || mode == "" {
		if tty {
			return config.ModeTUI
		}
		return config.ModeSimple
	}
	return mode
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
