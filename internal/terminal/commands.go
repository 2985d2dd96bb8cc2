package terminal

import (
	"context"
	"strings"

	"github.com/eachlabs/solace/internal/chat"
)

// command is a slash command. run reports whether the session should end.
type command struct {
	name string
	help string
	run  func(ctx context.Context, t *Terminal, client *chat.Client) bool
}

var commands []command

func init() {
	commands = []command{
		{
			name: "/help",
			help: "Show this help",
			run: func(_ context.Context, t *Terminal, _ *chat.Client) bool {
				t.printf("\nCommands:\n")
				for _, c := range commands {
					t.printf("  %-8s - %s\n", c.name, c.help)
				}
				t.printf("  %-8s - %s\n", "//...", "Send a message that starts with /")
				return false
			},
		},
		{
			name: "/clear",
			help: "Clear the conversation",
			run: func(ctx context.Context, _ *Terminal, client *chat.Client) bool {
				client.ResetConversation(ctx)
				return false
			},
		},
		{
			name: "/exit",
			help: "Exit solace",
			run: func(context.Context, *Terminal, *chat.Client) bool {
				return true
			},
		},
	}
}

func lookupCommand(line string) (command, bool) {
	name := strings.ToLower(strings.TrimSpace(line))
	if name == "/quit" {
		name = "/exit"
	}
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}
