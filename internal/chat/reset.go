package chat

import (
	"context"

	"github.com/eachlabs/solace/internal/api"
)

// ResetConversation asks for confirmation, clears the server-side state for
// this session and then drops every transcript entry after the greeting.
// If the server call fails the transcript is left as is and the user is
// alerted; client and server may disagree afterwards.
func (c *Client) ResetConversation(ctx context.Context) {
	if !c.surface.Confirm(c.confirmPrompt) {
		return
	}

	if err := c.assistant.Clear(ctx, api.ClearRequest{SessionID: c.sessionID.String()}); err != nil {
		c.logger.Error().Err(err).Msg("chat: clear failed")
		c.surface.Alert(c.clearFailedText)
		return
	}

	c.logger.Info().Msg("chat: conversation cleared")
	c.renderer.TruncateToGreeting()
	c.surface.FocusInput()
}
