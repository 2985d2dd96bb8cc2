package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/eachlabs/solace/internal/api"
	"github.com/eachlabs/solace/internal/transcript"
	"github.com/pkg/errors"
)

// Exchange is one accepted send whose request has not run yet.
type Exchange struct {
	client *Client
	text   string
	once   sync.Once
}

// TrySend sends rawInput and streams the reply into the transcript,
// blocking until the exchange completes. Empty input, or input submitted
// while another send is in flight, is dropped silently.
func (c *Client) TrySend(ctx context.Context, rawInput string) {
	ex, ok := c.Begin(rawInput)
	if !ok {
		return
	}
	ex.Run(ctx)
}

// Begin is the non-blocking half of TrySend. It validates the input, takes
// the processing flag, appends the user message and clears the input. It
// returns false, with nothing changed, when the send is rejected. An
// accepted Exchange must be Run exactly once to release the flag.
func (c *Client) Begin(rawInput string) (*Exchange, bool) {
	text := strings.TrimSpace(rawInput)
	if text == "" {
		return nil, false
	}
	if !c.tryLock() {
		c.logger.Debug().Msg("chat: send dropped, request in flight")
		return nil, false
	}

	c.renderer.Append(transcript.Message{Text: text, Sender: transcript.SenderUser})
	c.surface.ClearInput()
	c.surface.SetProcessing(true)

	return &Exchange{client: c, text: text}, true
}

// Run issues the request and streams the reply. Any failure appends the
// fixed error message; the processing flag is released on every path.
func (e *Exchange) Run(ctx context.Context) {
	e.once.Do(func() {
		c := e.client
		defer c.unlock()

		if err := e.stream(ctx); err != nil {
			c.logger.Error().Err(err).Msg("chat: send failed")
			c.renderer.Append(transcript.Message{Text: c.errorText, Sender: transcript.SenderAssistant})
		}
	})
}

func (e *Exchange) stream(ctx context.Context) (err error) {
	c := e.client

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while streaming reply: %v", r)
		}
	}()

	s, err := c.assistant.Chat(ctx, api.ChatRequest{
		Message:   e.text,
		SessionID: c.sessionID.String(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	c.surface.HideTyping()
	h := c.renderer.AppendPlaceholder()

	chunks := 0
	for chunk, err := range s.Chunks() {
		if err != nil {
			return err
		}
		chunks++
		c.logger.Trace().Int("chunk", chunks).Int("bytes", len(chunk)).Msg("chat: chunk received")
		c.renderer.Mutate(h, chunk)
	}

	c.logger.Debug().Int("chunks", chunks).Msg("chat: reply complete")
	return nil
}
