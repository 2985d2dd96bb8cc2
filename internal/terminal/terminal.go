// Package terminal runs a chat session on a plain line-oriented terminal.
// Each input line is one send; replies are printed inline as they stream.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/eachlabs/solace/internal/chat"
	"github.com/eachlabs/solace/internal/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	input "github.com/tcnksm/go-input"
)

var (
	purple = lipgloss.Color("#A855F7")
	green  = lipgloss.Color("#22C55E")
	red    = lipgloss.Color("#EF4444")
	gray   = lipgloss.Color("#6B7280")

	userPromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(purple)

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(green)

	alertStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(gray)
)

// Options configure a Terminal. Nil streams default to the process stdio.
type Options struct {
	In  io.Reader
	Out io.Writer

	// TTY enables the transient typing indicator.
	TTY bool

	Logger *zerolog.Logger
}

// Terminal is the line-mode chat.Surface. Its Renderer echoes transcript
// changes to the output as they happen.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	ui     *input.UI
	tty    bool
	logger zerolog.Logger

	log      *transcript.Log
	renderer *echoRenderer

	mu      sync.Mutex
	midLine bool
	typing  bool

	// readMu guards the single outstanding stdin read.
	readMu  sync.Mutex
	readCtx context.Context
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

var _ chat.Surface = (*Terminal)(nil)

// New creates a terminal surface over log.
func New(log *transcript.Log, opts Options) *Terminal {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	br := bufio.NewReader(in)
	t := &Terminal{
		in:      br,
		out:     out,
		tty:     opts.TTY,
		logger:  logger.With().Str("component", "terminal").Logger(),
		log:     log,
		readCtx: context.Background(),
	}
	// go-input buffers on its own; hand it whole lines only so it never
	// swallows input meant for the read loop.
	t.ui = &input.UI{Reader: &lineReader{t: t}, Writer: out}
	t.renderer = &echoRenderer{log: log, t: t}
	return t
}

// Renderer returns the transcript renderer the chat.Client must use.
func (t *Terminal) Renderer() transcript.Renderer {
	return t.renderer
}

// Run reads lines until /exit, end of input or ctx is done. client must
// have been built with this Terminal and its Renderer.
func (t *Terminal) Run(ctx context.Context, client *chat.Client) error {
	t.readMu.Lock()
	t.readCtx = ctx
	t.readMu.Unlock()

	if entries := t.log.Entries(); len(entries) > 0 {
		t.printAssistant(entries[0].Text)
	}
	t.printf("%s\n", mutedStyle.Render("Type /help for commands."))

	for {
		if ctx.Err() != nil {
			return nil
		}

		t.printf("\n%s ", userPromptStyle.Render(">"))

		line, err := t.readLine(ctx)
		if ctx.Err() != nil {
			t.printf("\n")
			return nil
		}
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				t.printf("\n")
				return nil
			}
			return errors.Wrap(err, "failed to read input")
		}
		line = strings.TrimRight(line, "\r\n")

		if cmd, ok := lookupCommand(line); ok {
			if cmd.run(ctx, t, client) {
				return nil
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "//"):
			// A doubled slash sends the rest as an ordinary message.
			line = trimmed[1:]
		case strings.HasPrefix(trimmed, "/"):
			t.printf("Unknown command: %s (try /help, or start with // to send it)\n", trimmed)
			continue
		}

		if ctx.Err() != nil {
			return nil
		}
		ex, ok := client.Begin(line)
		if !ok {
			continue
		}
		ex.Run(ctx)
	}
}

// readLine returns the next input line, or ctx's error once ctx is done.
// The read itself runs on its own goroutine; an abandoned read is picked up
// by the next call instead of being lost.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if t.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := t.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		t.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-t.pending:
		t.pending = nil
		return r.line, r.err
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// endLineLocked terminates a partially printed reply and erases the typing
// indicator. Callers hold t.mu.
func (t *Terminal) endLineLocked() {
	if t.typing {
		fmt.Fprint(t.out, "\r\033[K")
		t.typing = false
	}
	if t.midLine {
		fmt.Fprintln(t.out)
		t.midLine = false
	}
}

func (t *Terminal) printAssistant(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLineLocked()
	fmt.Fprintf(t.out, "%s %s\n", assistantLabelStyle.Render("AI:"), text)
}

func (t *Terminal) startReply() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLineLocked()
	fmt.Fprintf(t.out, "%s ", assistantLabelStyle.Render("AI:"))
	t.midLine = true
}

func (t *Terminal) writeDelta(delta string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, delta)
	if f, ok := t.out.(*os.File); ok {
		_ = f.Sync()
	}
}

// ClearInput is a no-op: the line was consumed when it was read.
func (t *Terminal) ClearInput() {}

func (t *Terminal) SetProcessing(processing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !processing {
		t.endLineLocked()
		return
	}
	if t.tty {
		fmt.Fprint(t.out, mutedStyle.Render("typing..."))
		t.typing = true
	}
}

func (t *Terminal) HideTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typing {
		fmt.Fprint(t.out, "\r\033[K")
		t.typing = false
	}
}

// FocusInput is a no-op; the read loop prompts before every line.
func (t *Terminal) FocusInput() {}

// Confirm asks a yes/no question on the terminal. Anything but an explicit
// yes, including a read failure, is a no.
func (t *Terminal) Confirm(prompt string) bool {
	t.mu.Lock()
	t.endLineLocked()
	t.mu.Unlock()

	answer, err := t.ui.Ask(prompt+" [y/N]", &input.Options{
		Default:     "n",
		Required:    true,
		Loop:        true,
		HideDefault: true,
		ValidateFunc: func(answer string) error {
			switch strings.ToLower(answer) {
			case "y", "yes", "n", "no":
				return nil
			default:
				return errors.Errorf("please enter 'y' or 'n'")
			}
		},
	})
	if err != nil {
		t.logger.Warn().Err(err).Msg("terminal: confirmation failed")
		return false
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *Terminal) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLineLocked()
	fmt.Fprintf(t.out, "%s\n", alertStyle.Render("! "+message))
}

// echoRenderer forwards to the transcript log and prints what changed.
type echoRenderer struct {
	log *transcript.Log
	t   *Terminal
}

var _ transcript.Renderer = (*echoRenderer)(nil)

// Append echoes assistant messages only; user lines are already on screen.
func (r *echoRenderer) Append(msg transcript.Message) transcript.Handle {
	h := r.log.Append(msg)
	if msg.Sender == transcript.SenderAssistant {
		r.t.printAssistant(msg.Text)
	}
	return h
}

func (r *echoRenderer) AppendPlaceholder() transcript.Handle {
	h := r.log.AppendPlaceholder()
	r.t.startReply()
	return h
}

func (r *echoRenderer) Mutate(h transcript.Handle, delta string) {
	r.log.Mutate(h, delta)
	r.t.writeDelta(delta)
}

func (r *echoRenderer) TruncateToGreeting() {
	r.log.TruncateToGreeting()
	r.t.printf("%s\n", mutedStyle.Render("Conversation cleared."))
	if entries := r.log.Entries(); len(entries) > 0 {
		r.t.printAssistant(entries[0].Text)
	}
}

// lineReader hands out at most one line per Read, sourced from the same
// cancellable reads as the prompt loop.
type lineReader struct {
	t   *Terminal
	buf []byte
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		r.t.readMu.Lock()
		ctx := r.t.readCtx
		r.t.readMu.Unlock()

		line, err := r.t.readLine(ctx)
		if line == "" {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		r.buf = []byte(line)
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
