// Package chat implements the send and reset controllers that drive a chat
// surface against the assistant server.
package chat

import (
	"context"
	"sync"

	"github.com/eachlabs/solace/internal/api"
	"github.com/eachlabs/solace/internal/session"
	"github.com/eachlabs/solace/internal/transcript"
	"github.com/rs/zerolog"
)

const (
	DefaultErrorText       = "Sorry, I encountered an error. Please try again."
	DefaultConfirmPrompt   = "Clear conversation?"
	DefaultClearFailedText = "Failed to clear chat"
)

// Assistant is the remote endpoint a Client talks to. *api.Client implements it.
type Assistant interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.Stream, error)
	Clear(ctx context.Context, req api.ClearRequest) error
}

// Surface is the input side of a chat UI: the text field, its send
// affordance, the typing indicator and modal prompts.
type Surface interface {
	// ClearInput empties the input field.
	ClearInput()

	// SetProcessing disables (true) or re-enables (false) input and shows
	// or hides the typing indicator accordingly.
	SetProcessing(processing bool)

	// HideTyping hides the typing indicator without re-enabling input.
	HideTyping()

	// FocusInput returns focus to the input field.
	FocusInput()

	// Confirm blocks until the user answers a yes/no question.
	Confirm(prompt string) bool

	// Alert shows a message the user must acknowledge.
	Alert(message string)
}

// Options customise user-visible texts and logging.
type Options struct {
	ErrorText       string
	ConfirmPrompt   string
	ClearFailedText string

	Logger *zerolog.Logger
}

// Client is one chat session: it owns the session ID and the processing
// flag, and runs sends and resets against a renderer and surface.
type Client struct {
	sessionID session.ID
	assistant Assistant
	renderer  transcript.Renderer
	surface   Surface

	errorText       string
	confirmPrompt   string
	clearFailedText string

	logger zerolog.Logger

	mu         sync.Mutex
	processing bool
}

// NewClient creates a chat session client.
func NewClient(id session.ID, assistant Assistant, renderer transcript.Renderer, surface Surface, opts Options) *Client {
	c := &Client{
		sessionID:       id,
		assistant:       assistant,
		renderer:        renderer,
		surface:         surface,
		errorText:       opts.ErrorText,
		confirmPrompt:   opts.ConfirmPrompt,
		clearFailedText: opts.ClearFailedText,
	}

	if c.errorText == "" {
		c.errorText = DefaultErrorText
	}
	if c.confirmPrompt == "" {
		c.confirmPrompt = DefaultConfirmPrompt
	}
	if c.clearFailedText == "" {
		c.clearFailedText = DefaultClearFailedText
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	c.logger = logger.With().
		Str("component", "chat").
		Str("session_id", id.String()).
		Logger()

	return c
}

// SessionID returns the identifier sent with every request.
func (c *Client) SessionID() session.ID {
	return c.sessionID
}

// Processing reports whether a request is in flight.
func (c *Client) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// tryLock sets the processing flag if it was clear.
func (c *Client) tryLock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.processing {
		return false
	}
	c.processing = true
	return true
}

func (c *Client) unlock() {
	c.mu.Lock()
	c.processing = false
	c.mu.Unlock()

	c.surface.SetProcessing(false)
	c.surface.FocusInput()
}
