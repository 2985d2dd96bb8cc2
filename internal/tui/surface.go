package tui

import (
	"sync"

	"github.com/eachlabs/solace/internal/chat"
)

type confirmRequest struct {
	prompt string
	reply  chan bool
}

// surfaceState is what the model copies out of the Surface on every refresh.
type surfaceState struct {
	processing bool
	typing     bool
	clearSeq   int
	focusSeq   int
	alert      string
	confirm    *confirmRequest
}

// Surface is the chat.Surface of the TUI. Controllers call it from any
// goroutine; it records the requested state and wakes the bubbletea loop,
// which applies the state on its own goroutine. Wake-ups coalesce, so
// callers never block on the UI.
type Surface struct {
	mu    sync.Mutex
	state surfaceState

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

var _ chat.Surface = (*Surface)(nil)

// NewSurface creates a TUI surface.
func NewSurface() *Surface {
	return &Surface{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Poke wakes the UI loop. It never blocks.
func (s *Surface) Poke() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Surface) update(fn func(st *surfaceState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.Poke()
}

func (s *Surface) snapshot() surfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Surface) ClearInput() {
	s.update(func(st *surfaceState) { st.clearSeq++ })
}

func (s *Surface) SetProcessing(processing bool) {
	s.update(func(st *surfaceState) {
		st.processing = processing
		st.typing = processing
	})
}

func (s *Surface) HideTyping() {
	s.update(func(st *surfaceState) { st.typing = false })
}

func (s *Surface) FocusInput() {
	s.update(func(st *surfaceState) { st.focusSeq++ })
}

// Confirm shows prompt and blocks until the user answers. It answers no
// once the program has quit.
func (s *Surface) Confirm(prompt string) bool {
	req := &confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	s.update(func(st *surfaceState) { st.confirm = req })

	select {
	case ok := <-req.reply:
		return ok
	case <-s.done:
		return false
	}
}

func (s *Surface) Alert(message string) {
	s.update(func(st *surfaceState) { st.alert = message })
}

// answer resolves the pending confirmation, if any.
func (s *Surface) answer(yes bool) {
	s.mu.Lock()
	req := s.state.confirm
	s.state.confirm = nil
	s.mu.Unlock()

	if req != nil {
		req.reply <- yes
	}
}

func (s *Surface) dismissAlert() {
	s.mu.Lock()
	s.state.alert = ""
	s.mu.Unlock()
}

// Close releases any goroutine blocked in Confirm.
func (s *Surface) Close() {
	s.once.Do(func() { close(s.done) })
}
